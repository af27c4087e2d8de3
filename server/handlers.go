package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"beatsensei/config"
	"beatsensei/core/quota"
	"beatsensei/core/recommend"
	"beatsensei/core/search"
	"beatsensei/core/trend"
	"beatsensei/logger"
	"beatsensei/repository"
)

// APIHandler bundles the repositories and core services behind the
// HTTP routes.
type APIHandler struct {
	sampleRepo      repository.SampleRepository
	userRepo        repository.UserRepository
	prefRepo        repository.PreferenceRepository
	usageRepo       repository.UsageRepository
	interactionRepo *repository.InteractionRepository

	searchEngine *search.Engine
	trendScorer  *trend.Scorer
	recommender  *recommend.Scorer
	limiter      *quota.Limiter

	cfg *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	sampleRepo repository.SampleRepository,
	userRepo repository.UserRepository,
	prefRepo repository.PreferenceRepository,
	usageRepo repository.UsageRepository,
	interactionRepo *repository.InteractionRepository,
	searchEngine *search.Engine,
	trendScorer *trend.Scorer,
	recommender *recommend.Scorer,
	limiter *quota.Limiter,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		sampleRepo:      sampleRepo,
		userRepo:        userRepo,
		prefRepo:        prefRepo,
		usageRepo:       usageRepo,
		interactionRepo: interactionRepo,
		searchEngine:    searchEngine,
		trendScorer:     trendScorer,
		recommender:     recommender,
		limiter:         limiter,
		cfg:             cfg,
	}
}

// errorPayload is the structured error body for every failing response.
type errorPayload struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("failed to encode response", logger.ErrorField(err))
		}
	}
}

// respondError writes a structured error response.
func respondError(w http.ResponseWriter, status int, message, detail string) {
	respondJSON(w, status, errorPayload{Error: message, Detail: detail})
}

// queryInt parses an optional integer query parameter. Malformed values
// return ok=false so handlers can reject them as validation errors.
func queryInt(r *http.Request, name string) (*int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	return &v, true
}

// queryInt64 parses an optional int64 query parameter.
func queryInt64(r *http.Request, name string) (*int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}

// queryFloat parses an optional float query parameter.
func queryFloat(r *http.Request, name string) (*float64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}

// queryTime parses an optional RFC3339 or date-only query parameter.
func queryTime(r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, true
	}
	return nil, false
}

// queryList parses a comma-separated query parameter into a trimmed list.
func queryList(r *http.Request, name string) []string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

// queryBool parses an optional boolean query parameter, treating
// malformed values as false.
func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
