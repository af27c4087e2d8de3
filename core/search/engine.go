package search

import (
	"context"

	"beatsensei/cache"
	"beatsensei/logger"
	"beatsensei/model"
	"beatsensei/repository"
)

// Engine resolves structured filter requests into ranked, paginated
// result pages with applied-filter echo and discoverable-filter metadata.
type Engine struct {
	sampleRepo repository.SampleRepository
}

// NewEngine creates a new search Engine.
func NewEngine(sampleRepo repository.SampleRepository) *Engine {
	return &Engine{sampleRepo: sampleRepo}
}

// Normalize fills in defaults and resolves the effective sort in place.
func Normalize(req *model.SearchRequest) {
	if req.Limit <= 0 {
		req.Limit = model.DefaultSearchLimit
	}
	if req.Limit > model.MaxSearchLimit {
		req.Limit = model.MaxSearchLimit
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	switch req.SortBy {
	case model.SortRelevance, model.SortDownloads, model.SortNewest,
		model.SortBPM, model.SortDuration, model.SortFileSize:
	default:
		req.SortBy = model.SortRelevance
	}
	if req.SortOrder != model.OrderAsc {
		req.SortOrder = model.OrderDesc
	}

	// Relevance sorting without a text query has nothing to rank on;
	// the effective order becomes downloads descending.
	if req.SortBy == model.SortRelevance && req.Query == "" {
		req.SortBy = model.SortDownloads
		req.SortOrder = model.OrderDesc
	}
}

// HasInvalidRange reports whether any explicitly-typed range has
// min > max. Such requests yield an empty result set, not an error.
func HasInvalidRange(req *model.SearchRequest) bool {
	if req.BPMMin != nil && req.BPMMax != nil && *req.BPMMin > *req.BPMMax {
		return true
	}
	if req.EnergyMin != nil && req.EnergyMax != nil && *req.EnergyMin > *req.EnergyMax {
		return true
	}
	if req.DurationMin != nil && req.DurationMax != nil && *req.DurationMin > *req.DurationMax {
		return true
	}
	if req.FileSizeMin != nil && req.FileSizeMax != nil && *req.FileSizeMin > *req.FileSizeMax {
		return true
	}
	if req.UploadedAfter != nil && req.UploadedBefore != nil && req.UploadedAfter.After(*req.UploadedBefore) {
		return true
	}
	return false
}

// Search executes a filter request end to end.
func (e *Engine) Search(ctx context.Context, req *model.SearchRequest) (*model.SearchResponse, error) {
	Normalize(req)

	resp := &model.SearchResponse{
		Results: []*model.Sample{},
		Pagination: model.PaginationInfo{
			Limit:  req.Limit,
			Offset: req.Offset,
		},
		Filters: model.SearchFilterInfo{Applied: req},
		Sort:    model.SearchSortInfo{By: req.SortBy, Order: req.SortOrder},
	}

	if !HasInvalidRange(req) {
		results, total, err := e.sampleRepo.Search(ctx, req)
		if err != nil {
			return nil, err
		}
		resp.Results = results
		resp.Pagination.Total = total
		resp.Pagination.HasMore = int64(req.Offset+len(results)) < total
	}

	// The discoverable-filters block is advisory; a failure here degrades
	// to whatever was collected instead of failing the search.
	resp.Filters.Available = e.AvailableFilters(ctx)

	return resp, nil
}

// AvailableFilters returns the distinct filterable values, preferring the
// short-lived cache and degrading to partial results on backend errors.
func (e *Engine) AvailableFilters(ctx context.Context) *model.AvailableFilters {
	if cached, err := cache.GetAvailableFilters(ctx); err == nil && cached != nil {
		return cached
	}

	filters, err := e.sampleRepo.AvailableFilters(ctx)
	if err != nil {
		logger.Warn("available filters query degraded", logger.ErrorField(err))
	}
	if filters == nil {
		filters = &model.AvailableFilters{
			Genres:          []string{},
			Keys:            []string{},
			InstrumentTypes: []string{},
			EraDecades:      []string{},
			AudioFormats:    []string{},
		}
	}

	if err == nil {
		if cacheErr := cache.SetAvailableFilters(ctx, filters); cacheErr != nil {
			logger.Debug("failed to cache available filters", logger.ErrorField(cacheErr))
		}
	}

	return filters
}
