package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/hitoshi/leaderboard/internal/model"
)

// uniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const uniqueViolation = "23505"

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userColumns = `id, name, total_points, created_at, updated_at`

// ListByRank は全ユーザーをtotal_points降順で返す。
// 同点時はseq（挿入順）で安定した順序にする。
func (r *PostgresUserRepo) ListByRank(ctx context.Context) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY total_points DESC, seq ASC`,
	)
	if err != nil {
		return nil, model.NewStoreError("users.list_by_rank", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user := &model.User{}
		if err := rows.Scan(&user.ID, &user.Name, &user.TotalPoints, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, model.NewStoreError("users.list_by_rank", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStoreError("users.list_by_rank", err)
	}

	return users, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Name, &user.TotalPoints, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, model.NewStoreError("users.find_by_id", err)
	}

	return user, nil
}

// Create はユーザーを作成する。
// nameの一意制約違反はDUPLICATE_NAMEに変換する。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, total_points, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Name, user.TotalPoints, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.NewDuplicateNameError(user.Name)
		}
		return model.NewStoreError("users.create", err)
	}
	return nil
}

// IncrementPoints はtotal_pointsにamountを加算し、更新後の行をRETURNINGで返す。
// UPDATEの行ロックにより同一ユーザーへの同時加算は直列化され、更新が失われない。
func (r *PostgresUserRepo) IncrementPoints(ctx context.Context, id string, amount int) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE users
		 SET total_points = total_points + $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, amount,
	).Scan(&user.ID, &user.Name, &user.TotalPoints, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, model.NewStoreError("users.increment_points", err)
	}

	return user, nil
}

// Count は登録済みユーザー数を返す。
func (r *PostgresUserRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, model.NewStoreError("users.count", err)
	}
	return n, nil
}

// isUniqueViolation はerrがPostgreSQLの一意制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
