package model

// DefaultRecommendationLimit is the default number of recommendations.
const DefaultRecommendationLimit = 10

// Recommendation match reasons, most specific first.
const (
	ReasonAllPreferences = "Matches all preferences"
	ReasonGenreAndBPM    = "Matches genre and BPM"
	ReasonGenreAndKey    = "Matches genre and key"
	ReasonBPMAndKey      = "Matches BPM and key"
	ReasonGenre          = "Matches favorite genre"
	ReasonBPM            = "Matches favorite BPM range"
	ReasonKey            = "Matches favorite key"
	ReasonPopular        = "Popular sample"
	ReasonTrending       = "Trending"
)

// RecommendationRequest carries the user identity plus optional overrides
// for individual preference dimensions.
type RecommendationRequest struct {
	UserID string `json:"userId,omitempty"` // empty means anonymous

	GenreOverrides []string `json:"genreOverrides,omitempty"`
	BPMMinOverride *int     `json:"bpmMinOverride,omitempty"`
	BPMMaxOverride *int     `json:"bpmMaxOverride,omitempty"`
	KeyOverrides   []string `json:"keyOverrides,omitempty"`

	Limit int `json:"limit,omitempty"` // default 10
}

// Recommendation is a scored, explained sample suggestion.
type Recommendation struct {
	*Sample
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// RecommendationFilters echoes the effective preference dimensions used.
type RecommendationFilters struct {
	Genres []string `json:"genres,omitempty"`
	BPMMin *int     `json:"bpmMin,omitempty"`
	BPMMax *int     `json:"bpmMax,omitempty"`
	Keys   []string `json:"keys,omitempty"`
}

// RecommendationResponse is the recommendations endpoint payload.
type RecommendationResponse struct {
	Recommendations []*Recommendation     `json:"recommendations"`
	FiltersApplied  RecommendationFilters `json:"filtersApplied"`
	UserID          string                `json:"userId,omitempty"`
}
