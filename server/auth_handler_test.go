package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"beatsensei/config"
	"beatsensei/core/auth"
)

func TestAuthMiddleware(t *testing.T) {
	auth.InitAuth(&config.Config{JWTSecret: "test-secret"})
	h := &APIHandler{}

	t.Run("valid token reaches the handler with its identity", func(t *testing.T) {
		token, err := auth.GenerateToken(7, "digger")
		if err != nil {
			t.Fatalf("GenerateToken failed: %v", err)
		}

		var gotID int64
		var identity string
		handler := h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
			gotID, _ = GetUserIDFromContext(r.Context())
			identity = callerIdentity(r)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/usage", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if gotID != 7 {
			t.Errorf("context user ID = %d, want 7", gotID)
		}
		if identity != "7" {
			t.Errorf("callerIdentity = %q, want 7", identity)
		}
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		called := false
		handler := h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		req := httptest.NewRequest(http.MethodGet, "/api/usage", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if called {
			t.Error("handler ran despite an invalid token")
		}
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		handler := h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {})

		req := httptest.NewRequest(http.MethodGet, "/api/usage", nil)
		req.Header.Set("Authorization", "token-without-scheme")
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("anonymous session passes through", func(t *testing.T) {
		var identity string
		handler := h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
			identity = callerIdentity(r)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/usage", nil)
		req.Header.Set("X-Session-ID", "sess-1")
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if identity != "sess-1" {
			t.Errorf("callerIdentity = %q, want sess-1", identity)
		}
	})
}
