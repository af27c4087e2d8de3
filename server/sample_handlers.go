package server

import (
	"encoding/json"
	"net/http"

	"beatsensei/logger"
	"beatsensei/model"
)

// SearchSamplesHandler serves GET (query parameters) and POST (JSON
// body) searches over the sample library.
func (h *APIHandler) SearchSamplesHandler(w http.ResponseWriter, r *http.Request) {
	var req *model.SearchRequest
	if r.Method == http.MethodPost {
		req = &model.SearchRequest{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	} else {
		parsed, ok := parseSearchQuery(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid filter value", "numeric and date filters must be well formed")
			return
		}
		req = parsed
	}

	resp, err := h.searchEngine.Search(r.Context(), req)
	if err != nil {
		logger.Error("sample search failed", logger.ErrorField(err))
		respondError(w, http.StatusServiceUnavailable, "search backend unavailable", "")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// FiltersHandler serves the available-filter metadata on its own.
func (h *APIHandler) FiltersHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.searchEngine.AvailableFilters(r.Context()))
}

// parseSearchQuery maps URL query parameters onto a search request.
func parseSearchQuery(r *http.Request) (*model.SearchRequest, bool) {
	req := &model.SearchRequest{
		Query:     r.URL.Query().Get("query"),
		SortBy:    r.URL.Query().Get("sort_by"),
		SortOrder: r.URL.Query().Get("sort_order"),

		Keys:            queryList(r, "keys"),
		Genres:          queryList(r, "genres"),
		InstrumentTypes: queryList(r, "instrument_types"),
		EraDecades:      queryList(r, "era_decades"),
		AudioFormats:    queryList(r, "audio_formats"),
		Tags:            queryList(r, "tags"),
		Moods:           queryList(r, "moods"),

		HasMetadata:   queryBool(r, "has_metadata"),
		PopularOnly:   queryBool(r, "popular_only"),
		RecentlyAdded: queryBool(r, "recently_added"),
	}

	ok := true
	parse := func(set func() bool) {
		if ok {
			ok = set()
		}
	}

	parse(func() (valid bool) { req.BPMMin, valid = queryInt(r, "bpm_min"); return })
	parse(func() (valid bool) { req.BPMMax, valid = queryInt(r, "bpm_max"); return })
	parse(func() (valid bool) { req.EnergyMin, valid = queryInt(r, "energy_min"); return })
	parse(func() (valid bool) { req.EnergyMax, valid = queryInt(r, "energy_max"); return })
	parse(func() (valid bool) { req.DurationMin, valid = queryFloat(r, "duration_min"); return })
	parse(func() (valid bool) { req.DurationMax, valid = queryFloat(r, "duration_max"); return })
	parse(func() (valid bool) { req.FileSizeMin, valid = queryInt64(r, "file_size_min"); return })
	parse(func() (valid bool) { req.FileSizeMax, valid = queryInt64(r, "file_size_max"); return })
	parse(func() (valid bool) { req.UploadedAfter, valid = queryTime(r, "uploaded_after"); return })
	parse(func() (valid bool) { req.UploadedBefore, valid = queryTime(r, "uploaded_before"); return })
	if !ok {
		return nil, false
	}

	if limit, valid := queryInt(r, "limit"); valid && limit != nil {
		req.Limit = *limit
	}
	if offset, valid := queryInt(r, "offset"); valid && offset != nil {
		req.Offset = *offset
	}

	return req, true
}
