// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/leaderboard/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// ListByRank は全ユーザーをtotal_points降順で返す。
	// 同点の場合は作成順（先に登録されたユーザーが上位）とする。
	ListByRank(ctx context.Context) ([]*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// Create はユーザーを作成する。
	// 同名ユーザーが存在する場合はDUPLICATE_NAMEのAPIErrorを返す。
	Create(ctx context.Context, user *model.User) error

	// IncrementPoints はtotal_pointsにamountを原子的に加算し、更新後のユーザーを返す。
	// 読み取りと書き込みを分けず、単一の更新操作として実行する。
	// 対象ユーザーが存在しない場合はnilを返す。
	IncrementPoints(ctx context.Context, id string, amount int) (*model.User, error)

	// Count は登録済みユーザー数を返す。
	Count(ctx context.Context) (int, error)
}

// ClaimRepository はクレーム履歴の永続化インターフェース。
type ClaimRepository interface {
	// Create はクレーム履歴を追記する。履歴は作成後に変更されない。
	// PointsClaimedが正の整数でない場合はVALIDATION_ERRORのAPIErrorを返す。
	Create(ctx context.Context, claim *model.ClaimHistory) error

	// ListRecent は全履歴をclaimed_at降順で返す。
	// UserNameは読み取り時にusersから解決する。
	ListRecent(ctx context.Context) ([]*model.ClaimHistoryEntry, error)
}

// Pinger はストアの疎通確認インターフェース。
// ヘルスチェックで使用する。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// validateClaim は履歴追記前の最低限の検証を行う。
func validateClaim(claim *model.ClaimHistory) error {
	if claim.PointsClaimed <= 0 {
		return model.NewValidationError("pointsClaimed", "正の整数を指定してください")
	}
	return nil
}
