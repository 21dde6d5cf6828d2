package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/leaderboard/internal/model"
)

// DemoNames は初回起動時に登録するデモユーザーの名前。
var DemoNames = []string{
	"Rahul", "Kamal", "Sanak", "Amit", "Priya",
	"Neha", "Vikas", "Anjali", "Rohit", "Sneha",
}

// SeedDemoUsers はユーザーが1人も登録されていない場合に限りデモユーザーを登録する。
// 登録したユーザー数を返す。既にユーザーが存在する場合は何もしない（冪等）。
// 同時に実行された別プロセスが登録済みの名前はスキップする。
func (s *Service) SeedDemoUsers(ctx context.Context) (int, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("ユーザー数の取得に失敗しました: %w", err)
	}
	if count > 0 {
		slog.Info("ユーザーが登録済みのためシードをスキップします",
			slog.Int("user_count", count),
		)
		return 0, nil
	}

	// 件数確認と登録の間に別レプリカが同時にシードした場合は、重複を登録済みとして扱う
	created := 0
	for _, name := range DemoNames {
		if _, err := s.Create(ctx, name); err != nil {
			if model.IsAPIErrorCode(err, model.ErrCodeDuplicateName) {
				slog.Info("デモユーザーは登録済みです", slog.String("name", name))
				continue
			}
			return created, fmt.Errorf("デモユーザー %q の登録に失敗しました: %w", name, err)
		}
		created++
	}

	slog.Info("デモユーザーを登録しました",
		slog.Int("created", created),
	)
	return created, nil
}
