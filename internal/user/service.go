// Package user はユーザー登録とランキング参照のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/leaderboard/internal/metrics"
	"github.com/hitoshi/leaderboard/internal/model"
	"github.com/hitoshi/leaderboard/internal/repository"
	"github.com/hitoshi/leaderboard/internal/security"
)

// MaxNameLength は表示名の最大文字数（rune数）。
const MaxNameLength = 50

// RankedUser はランキング上の順位を付与したユーザー。
// Rankは1始まりの表示順位で、同点でも登録順に異なる順位を持つ。
type RankedUser struct {
	model.User
	Rank int
}

// Service はユーザー管理のサービス層。
type Service struct {
	userRepo  repository.UserRepository
	sanitizer security.NameSanitizerService
	metrics   metrics.MetricsCollector
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorはnilでもよい。
func NewService(
	userRepo repository.UserRepository,
	sanitizer security.NameSanitizerService,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		userRepo:  userRepo,
		sanitizer: sanitizer,
		metrics:   collector,
		now:       time.Now,
	}
}

// Create は新しいユーザーをtotal_points=0で登録する。
// 表示名はHTMLを除去・空白を正規化してから検証する。
// 空の場合と長すぎる場合はVALIDATION_ERROR、同名が存在する場合はDUPLICATE_NAMEを返す。
func (s *Service) Create(ctx context.Context, name string) (*model.User, error) {
	cleaned := s.sanitizer.Sanitize(name)
	if cleaned == "" {
		return nil, model.NewValidationError("name", "名前を入力してください")
	}
	if utf8.RuneCountInString(cleaned) > MaxNameLength {
		return nil, model.NewValidationError("name", fmt.Sprintf("%d文字以内で入力してください", MaxNameLength))
	}

	now := s.now().UTC()
	user := &model.User{
		ID:          uuid.NewString(),
		Name:        cleaned,
		TotalPoints: 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if model.IsAPIErrorCode(err, model.ErrCodeDuplicateName) {
			return nil, err
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordUserCreated()
	}

	slog.Info("ユーザーを作成しました",
		slog.String("user_id", user.ID),
		slog.String("name", user.Name),
	)

	return user, nil
}

// ListByRank は全ユーザーをtotal_points降順で返し、1始まりの順位を付与する。
func (s *Service) ListByRank(ctx context.Context) ([]RankedUser, error) {
	users, err := s.userRepo.ListByRank(ctx)
	if err != nil {
		return nil, fmt.Errorf("ランキングの取得に失敗しました: %w", err)
	}

	ranked := make([]RankedUser, len(users))
	for i, u := range users {
		ranked[i] = RankedUser{User: *u, Rank: i + 1}
	}
	return ranked, nil
}

// Get は指定IDのユーザーを返す。
// IDがUUID形式でない場合はVALIDATION_ERROR、存在しない場合はUSER_NOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, userID string) (*model.User, error) {
	if err := ValidateID(userID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(userID)
	}
	return user, nil
}

// ValidateID はユーザーIDが指定されておりUUID形式であることを検証する。
func ValidateID(userID string) error {
	if userID == "" {
		return model.NewValidationError("userId", "ユーザーIDを指定してください")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return model.NewValidationError("userId", "UUID形式で指定してください")
	}
	return nil
}
