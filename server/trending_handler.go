package server

import (
	"net/http"
	"time"

	"beatsensei/cache"
	"beatsensei/logger"
	"beatsensei/model"
)

// TrendingHandler serves the trending top-N with short-lived caching.
func (h *APIHandler) TrendingHandler(w http.ResponseWriter, r *http.Request) {
	req := &model.TrendingRequest{
		Timeframe: r.URL.Query().Get("timeframe"),
		Genre:     r.URL.Query().Get("genre"),
	}

	var ok bool
	if req.BPMMin, ok = queryInt(r, "bpm_min"); !ok {
		respondError(w, http.StatusBadRequest, "invalid bpm_min", "")
		return
	}
	if req.BPMMax, ok = queryInt(r, "bpm_max"); !ok {
		respondError(w, http.StatusBadRequest, "invalid bpm_max", "")
		return
	}
	if limit, valid := queryInt(r, "limit"); valid && limit != nil {
		req.Limit = *limit
	}

	key := cache.GetTrendingKey(req)
	if cached, err := cache.GetTrending(r.Context(), key); err == nil && cached != nil {
		respondJSON(w, http.StatusOK, cached)
		return
	} else if err != nil {
		logger.Warn("trending cache read failed", logger.ErrorField(err))
	}

	resp, err := h.trendScorer.Trending(r.Context(), req)
	if err != nil {
		logger.Error("trending query failed", logger.ErrorField(err))
		respondError(w, http.StatusServiceUnavailable, "trending backend unavailable", "")
		return
	}

	ttl := time.Duration(h.cfg.TrendingCacheTTL) * time.Second
	if err := cache.SetTrending(r.Context(), key, resp, ttl); err != nil {
		logger.Warn("trending cache write failed", logger.ErrorField(err))
	}

	respondJSON(w, http.StatusOK, resp)
}
