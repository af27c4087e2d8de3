package model

import "time"

// Sort keys accepted by the search endpoint.
const (
	SortRelevance = "relevance"
	SortDownloads = "downloads"
	SortNewest    = "newest"
	SortBPM       = "bpm"
	SortDuration  = "duration"
	SortFileSize  = "size"
)

// Sort orders.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Default pagination values.
const (
	DefaultSearchLimit = 50
	MaxSearchLimit     = 200
)

// PopularDownloadThreshold is the download count at or above which a
// sample counts as "popular" for the popular_only filter.
const PopularDownloadThreshold = 10

// RecentUploadWindowDays bounds the recently_added filter and the
// trending recency bonus.
const RecentUploadWindowDays = 7

// SearchRequest is a structured filter request. Every recognized option
// is enumerated; nil/empty fields mean "no constraint".
type SearchRequest struct {
	Query string `json:"query,omitempty"`

	BPMMin *int `json:"bpmMin,omitempty"`
	BPMMax *int `json:"bpmMax,omitempty"`

	Keys            []string `json:"keys,omitempty"`
	Genres          []string `json:"genres,omitempty"`
	InstrumentTypes []string `json:"instrumentTypes,omitempty"`
	EraDecades      []string `json:"eraDecades,omitempty"`
	AudioFormats    []string `json:"audioFormats,omitempty"`

	// Tags and Moods require superset containment: every requested value
	// must be present on the sample.
	Tags  []string `json:"tags,omitempty"`
	Moods []string `json:"moods,omitempty"`

	EnergyMin *int `json:"energyMin,omitempty"`
	EnergyMax *int `json:"energyMax,omitempty"`

	DurationMin *float64 `json:"durationMin,omitempty"`
	DurationMax *float64 `json:"durationMax,omitempty"`

	FileSizeMin *int64 `json:"fileSizeMin,omitempty"`
	FileSizeMax *int64 `json:"fileSizeMax,omitempty"`

	UploadedAfter  *time.Time `json:"uploadedAfter,omitempty"`
	UploadedBefore *time.Time `json:"uploadedBefore,omitempty"`

	HasMetadata   bool `json:"hasMetadata,omitempty"`
	PopularOnly   bool `json:"popularOnly,omitempty"`
	RecentlyAdded bool `json:"recentlyAdded,omitempty"`

	Limit  int `json:"limit,omitempty"`  // default 50
	Offset int `json:"offset,omitempty"` // default 0

	SortBy    string `json:"sortBy,omitempty"`    // default relevance
	SortOrder string `json:"sortOrder,omitempty"` // default desc
}

// PaginationInfo describes the returned page relative to the full match set.
type PaginationInfo struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

// AvailableFilters lists the distinct values currently present for each
// filterable dimension, for building further queries.
type AvailableFilters struct {
	Genres          []string `json:"genres"`
	Keys            []string `json:"keys"`
	InstrumentTypes []string `json:"instrumentTypes"`
	EraDecades      []string `json:"eraDecades"`
	AudioFormats    []string `json:"audioFormats"`
	BPMMin          *int     `json:"bpmMin,omitempty"`
	BPMMax          *int     `json:"bpmMax,omitempty"`
}

// SearchFilterInfo echoes applied filters next to discoverable ones.
type SearchFilterInfo struct {
	Applied   *SearchRequest    `json:"applied"`
	Available *AvailableFilters `json:"available"`
}

// SearchSortInfo echoes the effective sort.
type SearchSortInfo struct {
	By    string `json:"by"`
	Order string `json:"order"`
}

// SearchResponse is the ranked page returned by the search endpoint.
type SearchResponse struct {
	Results    []*Sample        `json:"results"`
	Pagination PaginationInfo   `json:"pagination"`
	Filters    SearchFilterInfo `json:"filters"`
	Sort       SearchSortInfo   `json:"sort"`
}
