package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestIDFromContext はchiのRequestIDミドルウェアが付与したIDを返す。
// 未設定の場合は空文字列を返す。
func RequestIDFromContext(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}
