package server

import (
	"net/http"

	"beatsensei/logger"
	"beatsensei/model"
)

// RecommendationsHandler serves personalized recommendations. Identity
// comes from a Bearer token when present, then the user_id query
// parameter; with neither, the trending fallback applies.
func (h *APIHandler) RecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	req := &model.RecommendationRequest{
		UserID:         callerIdentity(r),
		GenreOverrides: queryList(r, "genres"),
		KeyOverrides:   queryList(r, "keys"),
	}
	if req.UserID == "" {
		req.UserID = r.URL.Query().Get("user_id")
	}

	var ok bool
	if req.BPMMinOverride, ok = queryInt(r, "bpm_min"); !ok {
		respondError(w, http.StatusBadRequest, "invalid bpm_min", "")
		return
	}
	if req.BPMMaxOverride, ok = queryInt(r, "bpm_max"); !ok {
		respondError(w, http.StatusBadRequest, "invalid bpm_max", "")
		return
	}
	if limit, valid := queryInt(r, "limit"); valid && limit != nil {
		req.Limit = *limit
	}

	resp, err := h.recommender.Recommend(r.Context(), req)
	if err != nil {
		logger.Error("recommendation query failed",
			logger.String("userId", req.UserID),
			logger.ErrorField(err))
		respondError(w, http.StatusServiceUnavailable, "recommendation backend unavailable", "")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
