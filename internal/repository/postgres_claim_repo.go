package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/leaderboard/internal/model"
)

// PostgresClaimRepo はPostgreSQLを使用したクレーム履歴リポジトリ。
type PostgresClaimRepo struct {
	db *sql.DB
}

// NewPostgresClaimRepo はPostgresClaimRepoを生成する。
func NewPostgresClaimRepo(db *sql.DB) *PostgresClaimRepo {
	return &PostgresClaimRepo{db: db}
}

// Create はクレーム履歴を追記する。
func (r *PostgresClaimRepo) Create(ctx context.Context, claim *model.ClaimHistory) error {
	if err := validateClaim(claim); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO claim_history (id, user_id, points_claimed, claimed_at)
		 VALUES ($1, $2, $3, $4)`,
		claim.ID, claim.UserID, claim.PointsClaimed, claim.ClaimedAt,
	)
	if err != nil {
		return model.NewStoreError("claim_history.create", err)
	}
	return nil
}

// ListRecent は全履歴をclaimed_at降順で返す。
// ユーザー名はusersとのJOINで読み取り時に解決する。
func (r *PostgresClaimRepo) ListRecent(ctx context.Context) ([]*model.ClaimHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ch.id, ch.user_id, u.name, ch.points_claimed, ch.claimed_at
		 FROM claim_history ch
		 JOIN users u ON u.id = ch.user_id
		 ORDER BY ch.claimed_at DESC, ch.seq DESC`,
	)
	if err != nil {
		return nil, model.NewStoreError("claim_history.list_recent", err)
	}
	defer rows.Close()

	var entries []*model.ClaimHistoryEntry
	for rows.Next() {
		e := &model.ClaimHistoryEntry{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserName, &e.PointsClaimed, &e.ClaimedAt); err != nil {
			return nil, model.NewStoreError("claim_history.list_recent", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStoreError("claim_history.list_recent", err)
	}

	return entries, nil
}

// compile-time interface check
var _ ClaimRepository = (*PostgresClaimRepo)(nil)
