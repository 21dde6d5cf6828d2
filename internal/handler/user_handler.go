package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// ListUsers は順位付きのユーザー一覧を返す。
	ListUsers(ctx context.Context) ([]userResponse, error)
	// CreateUser は新しいユーザーを登録する。
	CreateUser(ctx context.Context, name string) (*userResponse, error)
	// GetUser はユーザー1件を返す。
	GetUser(ctx context.Context, userID string) (*userResponse, error)
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// createUserRequest はユーザー登録リクエストのボディ。
type createUserRequest struct {
	Name string `json:"name"`
}

// userResponse はユーザー情報のAPIレスポンス。
// Rankは一覧取得時のみ設定される。
type userResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TotalPoints int    `json:"totalPoints"`
	Rank        int    `json:"rank,omitempty"`
}

// ListUsers はランキング順のユーザー一覧を返す。
// GET /users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// CreateUser はユーザーを登録する。
// POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.service.CreateUser(r.Context(), req.Name)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetUser はユーザー1件を返す。
// GET /users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}
