package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// TestMiddlewareChain_PanicKeepsSecurityAndCORSHeaders は
// panic発生時もセキュリティヘッダーとCORSヘッダーが付与された500が返ることを検証する。
func TestMiddlewareChain_PanicKeepsSecurityAndCORSHeaders(t *testing.T) {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(NewSecurityHeadersMiddleware())
	r.Use(NewCORSMiddleware("http://localhost:3000"))
	r.Use(NewRecoveryMiddleware(slog.New(slog.NewJSONHandler(io.Discard, nil))))
	r.Post("/claim", func(w http.ResponseWriter, r *http.Request) {
		panic("unexpected")
	})

	req := httptest.NewRequest(http.MethodPost, "/claim", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want %q", got, "nosniff")
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:3000")
	}
}

// TestMiddlewareChain_PreflightShortCircuits はプリフライトリクエストがハンドラーに到達しないことを検証する。
func TestMiddlewareChain_PreflightShortCircuits(t *testing.T) {
	called := false
	r := chi.NewRouter()
	r.Use(NewSecurityHeadersMiddleware())
	r.Use(NewCORSMiddleware("http://localhost:3000"))
	r.Post("/users", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodOptions, "/users", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if called {
		t.Error("handler should not be called for preflight")
	}
	if w.Result().StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNoContent)
	}
}
