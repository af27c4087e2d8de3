package server

import (
	"net/http"

	"beatsensei/logger"
)

const (
	defaultInteractionLimit = 20
	maxInteractionLimit     = 100
)

// InteractionsHandler returns the recommendations recently served to
// the caller, newest first.
func (h *APIHandler) InteractionsHandler(w http.ResponseWriter, r *http.Request) {
	identity := callerIdentity(r)
	if identity == "" {
		respondError(w, http.StatusUnauthorized, "identity required", "present a Bearer token or X-Session-ID header")
		return
	}

	limitPtr, ok := queryInt(r, "limit")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid limit", "")
		return
	}
	limit := defaultInteractionLimit
	if limitPtr != nil && *limitPtr > 0 {
		limit = *limitPtr
	}
	if limit > maxInteractionLimit {
		limit = maxInteractionLimit
	}

	interactions, err := h.interactionRepo.ListRecentByUser(r.Context(), identity, limit)
	if err != nil {
		logger.Error("interaction history lookup failed",
			logger.String("userId", identity), logger.ErrorField(err))
		respondError(w, http.StatusServiceUnavailable, "interaction backend unavailable", "")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"interactions": interactions,
		"count":        len(interactions),
	})
}
