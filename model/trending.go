package model

// Trending timeframes.
const (
	TimeframeDay   = "day"
	TimeframeWeek  = "week"
	TimeframeMonth = "month"
	TimeframeAll   = "all"
)

// DefaultTrendingLimit is the default top-N size for trending queries.
const DefaultTrendingLimit = 20

// TrendingRequest selects the window and optional constraints.
type TrendingRequest struct {
	Timeframe string `json:"timeframe,omitempty"` // default week
	Genre     string `json:"genre,omitempty"`
	BPMMin    *int   `json:"bpmMin,omitempty"`
	BPMMax    *int   `json:"bpmMax,omitempty"`
	Limit     int    `json:"limit,omitempty"` // default 20
}

// TrendingSample is a sample annotated with its trend score.
type TrendingSample struct {
	*Sample
	TrendScore      float64 `json:"trendScore"`
	RecentDownloads int64   `json:"recentDownloads"`
}

// TrendingStats aggregates the returned top set.
type TrendingStats struct {
	TotalRecentDownloads int64    `json:"totalRecentDownloads"`
	PopularGenres        []string `json:"popularGenres"`
	AverageBPM           *float64 `json:"averageBpm,omitempty"`
}

// TrendingResponse is the trending endpoint payload.
type TrendingResponse struct {
	TrendingSamples []*TrendingSample `json:"trendingSamples"`
	Statistics      TrendingStats     `json:"statistics"`
	Timeframe       string            `json:"timeframe"`
}
