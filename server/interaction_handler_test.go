package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"beatsensei/repository"
)

func TestInteractionsHandler(t *testing.T) {
	h := &APIHandler{interactionRepo: repository.NewInteractionRepository()}

	t.Run("identity required", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/interactions", nil)
		rec := httptest.NewRecorder()
		h.InteractionsHandler(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("malformed limit is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/interactions?limit=abc", nil)
		req.Header.Set("X-Session-ID", "sess-1")
		rec := httptest.NewRecorder()
		h.InteractionsHandler(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("backend failure maps to 503", func(t *testing.T) {
		// The repository has no live connection here, so the lookup fails.
		req := httptest.NewRequest(http.MethodGet, "/api/interactions", nil)
		req.Header.Set("X-Session-ID", "sess-1")
		rec := httptest.NewRecorder()
		h.InteractionsHandler(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})
}
