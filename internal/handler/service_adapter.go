package handler

import (
	"context"

	"github.com/hitoshi/leaderboard/internal/claim"
	"github.com/hitoshi/leaderboard/internal/model"
	"github.com/hitoshi/leaderboard/internal/user"
)

// UserServiceAdapter は user.Service を UserServiceInterface に適合させるアダプタ。
type UserServiceAdapter struct {
	svc *user.Service
}

// NewUserServiceAdapter はUserServiceAdapterを生成する。
func NewUserServiceAdapter(svc *user.Service) *UserServiceAdapter {
	return &UserServiceAdapter{svc: svc}
}

// ListUsers は順位付きユーザー一覧をhandlerレスポンス型で返す。
// 0件でもnullではなく空配列を返す。
func (a *UserServiceAdapter) ListUsers(ctx context.Context) ([]userResponse, error) {
	ranked, err := a.svc.ListByRank(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]userResponse, len(ranked))
	for i, ru := range ranked {
		results[i] = toUserResponse(&ru.User)
		results[i].Rank = ru.Rank
	}
	return results, nil
}

// CreateUser はユーザーを登録しhandlerレスポンス型で返す。
func (a *UserServiceAdapter) CreateUser(ctx context.Context, name string) (*userResponse, error) {
	created, err := a.svc.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(created)
	return &resp, nil
}

// GetUser はユーザー1件をhandlerレスポンス型で返す。
func (a *UserServiceAdapter) GetUser(ctx context.Context, userID string) (*userResponse, error) {
	found, err := a.svc.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(found)
	return &resp, nil
}

// ClaimServiceAdapter は claim.Service を ClaimServiceInterface に適合させるアダプタ。
type ClaimServiceAdapter struct {
	svc *claim.Service
}

// NewClaimServiceAdapter はClaimServiceAdapterを生成する。
func NewClaimServiceAdapter(svc *claim.Service) *ClaimServiceAdapter {
	return &ClaimServiceAdapter{svc: svc}
}

// Claim はクレームを実行しhandlerレスポンス型で返す。
func (a *ClaimServiceAdapter) Claim(ctx context.Context, userID string) (*claimResponse, error) {
	result, err := a.svc.Claim(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &claimResponse{
		User:            toUserResponse(result.User),
		PointsAwarded:   result.PointsAwarded,
		HistoryRecorded: result.HistoryRecorded,
	}, nil
}

// ListHistory はクレーム履歴をhandlerレスポンス型で返す。
func (a *ClaimServiceAdapter) ListHistory(ctx context.Context) ([]historyResponse, error) {
	entries, err := a.svc.ListHistory(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]historyResponse, len(entries))
	for i, e := range entries {
		results[i] = historyResponse{
			ID:            e.ID,
			UserID:        e.UserID,
			UserName:      e.UserName,
			PointsClaimed: e.PointsClaimed,
			ClaimedAt:     e.ClaimedAt,
		}
	}
	return results, nil
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Name:        u.Name,
		TotalPoints: u.TotalPoints,
	}
}
