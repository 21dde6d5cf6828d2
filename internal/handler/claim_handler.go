package handler

import (
	"context"
	"net/http"
	"time"
)

// ClaimServiceInterface はクレームハンドラーが必要とするサービスインターフェース。
type ClaimServiceInterface interface {
	// Claim は指定ユーザーにランダムなポイントを付与する。
	Claim(ctx context.Context, userID string) (*claimResponse, error)
	// ListHistory は新しい順のクレーム履歴を返す。
	ListHistory(ctx context.Context) ([]historyResponse, error)
}

// ClaimHandler はクレームのHTTPハンドラー。
type ClaimHandler struct {
	service ClaimServiceInterface
}

// NewClaimHandler はClaimHandlerを生成する。
func NewClaimHandler(service ClaimServiceInterface) *ClaimHandler {
	return &ClaimHandler{
		service: service,
	}
}

// claimRequest はクレームリクエストのボディ。
type claimRequest struct {
	UserID string `json:"userId"`
}

// claimResponse はクレーム結果のAPIレスポンス。
type claimResponse struct {
	User            userResponse `json:"user"`
	PointsAwarded   int          `json:"pointsAwarded"`
	HistoryRecorded bool         `json:"historyRecorded"`
}

// historyResponse はクレーム履歴1件のAPIレスポンス。
type historyResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	UserName      string    `json:"userName"`
	PointsClaimed int       `json:"pointsClaimed"`
	ClaimedAt     time.Time `json:"claimedAt"`
}

// Claim はポイントの付与を処理する。
// POST /claim
func (h *ClaimHandler) Claim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Claim(r.Context(), req.UserID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListHistory はクレーム履歴を返す。
// GET /claim/history
func (h *ClaimHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListHistory(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
