package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"beatsensei/core/quota"
	"beatsensei/logger"
	"beatsensei/model"
)

// sampleFromPath resolves the {id} path variable to a stored sample,
// writing the error response itself when that fails.
func (h *APIHandler) sampleFromPath(w http.ResponseWriter, r *http.Request) *model.Sample {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid sample id", idStr)
		return nil
	}

	sample, err := h.sampleRepo.GetSampleByID(r.Context(), id)
	if err != nil {
		logger.Error("sample lookup failed", logger.Int64("sampleId", id), logger.ErrorField(err))
		respondError(w, http.StatusServiceUnavailable, "sample backend unavailable", "")
		return nil
	}
	if sample == nil {
		respondError(w, http.StatusNotFound, "sample not found", idStr)
		return nil
	}
	return sample
}

// DownloadSampleHandler records a download against the caller's quota
// and returns the file URL. Anonymous callers get a generated session
// identity, echoed back so the client can reuse it.
func (h *APIHandler) DownloadSampleHandler(w http.ResponseWriter, r *http.Request) {
	sample := h.sampleFromPath(w, r)
	if sample == nil {
		return
	}

	identity := callerIdentity(r)
	sessionID := r.Header.Get("X-Session-ID")
	if identity == "" {
		identity = uuid.NewString()
		sessionID = identity
	}

	record := &model.DownloadRecord{
		UserID:    identity,
		SampleID:  sample.ID,
		UserAgent: r.UserAgent(),
		IPAddress: r.RemoteAddr,
		Source:    r.URL.Query().Get("source"),
		SessionID: sessionID,
	}

	limit, err := h.limiter.RecordDownload(r.Context(), record)
	if err != nil {
		if errors.Is(err, quota.ErrQuotaExceeded) {
			logger.Warn("download rejected by quota",
				logger.String("userId", identity),
				logger.Int64("sampleId", sample.ID))
			respondJSON(w, http.StatusTooManyRequests, map[string]interface{}{
				"error":            "monthly download quota exceeded",
				"monthlyLimit":     limit.MonthlyLimit,
				"monthlyResetDate": limit.MonthlyResetDate,
			})
			return
		}
		logger.Error("download transaction failed",
			logger.String("userId", identity),
			logger.Int64("sampleId", sample.ID),
			logger.ErrorField(err))
		respondError(w, http.StatusServiceUnavailable, "download backend unavailable", "")
		return
	}

	logger.Info("download recorded",
		logger.String("userId", identity),
		logger.Int64("sampleId", sample.ID),
		logger.Int("downloadsThisMonth", limit.DownloadsThisMonth))

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"fileUrl":   sample.FileURL,
		"sessionId": sessionID,
		"usage": map[string]interface{}{
			"downloadsThisMonth": limit.DownloadsThisMonth,
			"monthlyLimit":       limit.MonthlyLimit,
			"remaining":          limit.Remaining(),
		},
	})
}

// PlaySampleHandler increments a sample's play counter.
func (h *APIHandler) PlaySampleHandler(w http.ResponseWriter, r *http.Request) {
	h.incrementCounter(w, r, h.sampleRepo.IncrementPlayCount)
}

// LikeSampleHandler increments a sample's like counter.
func (h *APIHandler) LikeSampleHandler(w http.ResponseWriter, r *http.Request) {
	h.incrementCounter(w, r, h.sampleRepo.IncrementLikeCount)
}

func (h *APIHandler) incrementCounter(w http.ResponseWriter, r *http.Request, increment func(ctx context.Context, id int64) error) {
	sample := h.sampleFromPath(w, r)
	if sample == nil {
		return
	}

	if err := increment(r.Context(), sample.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "sample not found", "")
			return
		}
		logger.Error("counter increment failed", logger.Int64("sampleId", sample.ID), logger.ErrorField(err))
		respondError(w, http.StatusServiceUnavailable, "sample backend unavailable", "")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UsageHandler returns the caller's current quota state.
func (h *APIHandler) UsageHandler(w http.ResponseWriter, r *http.Request) {
	identity := callerIdentity(r)
	if identity == "" {
		respondError(w, http.StatusUnauthorized, "identity required", "present a Bearer token or X-Session-ID header")
		return
	}

	limit, err := h.limiter.Status(r.Context(), identity)
	if err != nil {
		logger.Error("usage lookup failed", logger.String("userId", identity), logger.ErrorField(err))
		respondError(w, http.StatusServiceUnavailable, "usage backend unavailable", "")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tier":               limit.Tier,
		"monthlyLimit":       limit.MonthlyLimit,
		"downloadsThisMonth": limit.DownloadsThisMonth,
		"remaining":          limit.Remaining(),
		"monthlyResetDate":   limit.MonthlyResetDate,
		"maxConcurrent":      limit.MaxConcurrent,
		"premiumAccess":      limit.PremiumAccess,
	})
}
