// Package claim はポイントクレームのドメインロジックを提供する。
//
// 1回のクレームは次の順で処理する:
//  1. ユーザーIDの検証と存在確認（失敗時は副作用なし）
//  2. 1〜10の一様乱数でポイントを決定
//  3. total_pointsへの原子的な加算（ここが唯一の更新境界）
//  4. クレーム履歴の追記
//
// 3と4は同一トランザクションではない。4が失敗した場合も加算は取り消さず、
// クレーム自体は成功として返したうえで HistoryRecorded=false で通知する。
package claim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/leaderboard/internal/metrics"
	"github.com/hitoshi/leaderboard/internal/model"
	"github.com/hitoshi/leaderboard/internal/repository"
	"github.com/hitoshi/leaderboard/internal/user"
)

// Result は1回のクレームの結果。
type Result struct {
	// User は加算後のユーザー。加算操作の戻り値そのもので、再読み込みはしない。
	User *model.User
	// PointsAwarded は今回付与したポイント（1〜10）。
	PointsAwarded int
	// HistoryRecorded は履歴の追記に成功したかどうか。
	// falseの場合、ポイントは加算済みだが対応する履歴が存在しない。
	HistoryRecorded bool
}

// Service はクレーム処理のサービス層。
type Service struct {
	userRepo  repository.UserRepository
	claimRepo repository.ClaimRepository
	rng       RandomSource
	metrics   metrics.MetricsCollector
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// rngは必須。collectorはnilでもよい。
func NewService(
	userRepo repository.UserRepository,
	claimRepo repository.ClaimRepository,
	rng RandomSource,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		userRepo:  userRepo,
		claimRepo: claimRepo,
		rng:       rng,
		metrics:   collector,
		now:       time.Now,
	}
}

// Claim は指定ユーザーにランダムなポイントを付与し、履歴を記録する。
func (s *Service) Claim(ctx context.Context, userID string) (*Result, error) {
	if err := user.ValidateID(userID); err != nil {
		s.recordFailure(metrics.ReasonValidation)
		return nil, err
	}

	existing, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		s.recordFailure(metrics.ReasonStore)
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if existing == nil {
		s.recordFailure(metrics.ReasonNotFound)
		return nil, model.NewUserNotFoundError(userID)
	}

	points := s.drawPoints()

	updated, err := s.userRepo.IncrementPoints(ctx, userID, points)
	if err != nil {
		s.recordFailure(metrics.ReasonStore)
		return nil, fmt.Errorf("ポイントの加算に失敗しました: %w", err)
	}
	if updated == nil {
		// 存在確認後に消えた場合。加算は行われていない。
		s.recordFailure(metrics.ReasonNotFound)
		return nil, model.NewUserNotFoundError(userID)
	}

	result := &Result{
		User:            updated,
		PointsAwarded:   points,
		HistoryRecorded: true,
	}

	history := &model.ClaimHistory{
		ID:            uuid.NewString(),
		UserID:        userID,
		PointsClaimed: points,
		ClaimedAt:     s.now().UTC(),
	}
	if err := s.claimRepo.Create(ctx, history); err != nil {
		result.HistoryRecorded = false
		if s.metrics != nil {
			s.metrics.RecordHistoryAppendFailure()
		}
		slog.Error("ポイント加算後の履歴記録に失敗しました",
			slog.String("user_id", userID),
			slog.Int("points", points),
			slog.Int("total_points", updated.TotalPoints),
			slog.String("error", err.Error()),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordClaim(points)
	}

	slog.Info("クレームを処理しました",
		slog.String("user_id", userID),
		slog.Int("points", points),
		slog.Int("total_points", updated.TotalPoints),
		slog.Bool("history_recorded", result.HistoryRecorded),
	)

	return result, nil
}

// ListHistory は全クレーム履歴を新しい順に、ユーザー名を解決した状態で返す。
func (s *Service) ListHistory(ctx context.Context) ([]*model.ClaimHistoryEntry, error) {
	entries, err := s.claimRepo.ListRecent(ctx)
	if err != nil {
		return nil, fmt.Errorf("クレーム履歴の取得に失敗しました: %w", err)
	}
	return entries, nil
}

// drawPoints は[MinClaimPoints, MaxClaimPoints]の一様乱数を返す。
func (s *Service) drawPoints() int {
	return model.MinClaimPoints + s.rng.IntN(model.MaxClaimPoints-model.MinClaimPoints+1)
}

func (s *Service) recordFailure(reason string) {
	if s.metrics != nil {
		s.metrics.RecordClaimFailure(reason)
	}
}
