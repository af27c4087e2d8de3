package server

import (
	"encoding/json"
	"net/http"

	"beatsensei/logger"
	"beatsensei/model"
)

// GetPreferencesHandler returns the caller's stored preferences, or an
// empty record when none exist yet.
func (h *APIHandler) GetPreferencesHandler(w http.ResponseWriter, r *http.Request) {
	identity := callerIdentity(r)
	if identity == "" {
		respondError(w, http.StatusUnauthorized, "identity required", "present a Bearer token or X-Session-ID header")
		return
	}

	pref, err := h.prefRepo.GetByUserID(r.Context(), identity)
	if err != nil {
		logger.Error("preference lookup failed", logger.String("userId", identity), logger.ErrorField(err))
		respondError(w, http.StatusServiceUnavailable, "preference backend unavailable", "")
		return
	}
	if pref == nil {
		pref = &model.UserPreference{UserID: identity, FavoriteGenres: []string{}, FavoriteKeys: []string{}}
	}

	respondJSON(w, http.StatusOK, pref)
}

// UpdatePreferencesHandler replaces the caller's preference record.
func (h *APIHandler) UpdatePreferencesHandler(w http.ResponseWriter, r *http.Request) {
	identity := callerIdentity(r)
	if identity == "" {
		respondError(w, http.StatusUnauthorized, "identity required", "present a Bearer token or X-Session-ID header")
		return
	}

	var pref model.UserPreference
	if err := json.NewDecoder(r.Body).Decode(&pref); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if pref.BPMMin != nil && pref.BPMMax != nil && *pref.BPMMin > *pref.BPMMax {
		respondError(w, http.StatusBadRequest, "invalid BPM range", "bpmMin must not exceed bpmMax")
		return
	}
	pref.UserID = identity

	if err := h.prefRepo.Upsert(r.Context(), &pref); err != nil {
		logger.Error("preference upsert failed", logger.String("userId", identity), logger.ErrorField(err))
		respondError(w, http.StatusServiceUnavailable, "preference backend unavailable", "")
		return
	}

	logger.Info("preferences updated", logger.String("userId", identity))
	respondJSON(w, http.StatusOK, &pref)
}
