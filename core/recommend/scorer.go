package recommend

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"beatsensei/core/trend"
	"beatsensei/logger"
	"beatsensei/model"
	"beatsensei/repository"
)

// Scoring weights. Each preference dimension contributes equally; the
// popularity boost is capped so taste always outweighs raw downloads.
const (
	dimensionWeight    = 0.3
	popularityDivisor  = 10000.0
	popularityCap      = 0.1
	energyWeight       = 0.1
	energyIdeal        = 6.5
	trendingScoreScale = 1000.0
	loggedTopN         = 3
)

// Scorer computes personalized recommendations.
type Scorer struct {
	sampleRepo   repository.SampleRepository
	prefRepo     repository.PreferenceRepository
	interactions *repository.InteractionRepository
	trending     *trend.Scorer
}

// NewScorer creates a new recommendation Scorer. The interaction
// repository may be nil, in which case serving goes unlogged.
func NewScorer(
	sampleRepo repository.SampleRepository,
	prefRepo repository.PreferenceRepository,
	interactions *repository.InteractionRepository,
	trending *trend.Scorer,
) *Scorer {
	return &Scorer{
		sampleRepo:   sampleRepo,
		prefRepo:     prefRepo,
		interactions: interactions,
		trending:     trending,
	}
}

// Recommend returns ranked personalized recommendations. Anonymous
// callers get the trending fallback.
func (s *Scorer) Recommend(ctx context.Context, req *model.RecommendationRequest) (*model.RecommendationResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = model.DefaultRecommendationLimit
	}

	if req.UserID == "" {
		return s.trendingFallback(ctx, limit)
	}

	pref, err := s.prefRepo.GetByUserID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if pref == nil {
		pref = &model.UserPreference{UserID: req.UserID}
	}

	// Explicit filter values override the stored dimension.
	genres := pref.FavoriteGenres
	if len(req.GenreOverrides) > 0 {
		genres = req.GenreOverrides
	}
	keys := pref.FavoriteKeys
	if len(req.KeyOverrides) > 0 {
		keys = req.KeyOverrides
	}
	bpmMin, bpmMax := pref.BPMMin, pref.BPMMax
	if req.BPMMinOverride != nil {
		bpmMin = req.BPMMinOverride
	}
	if req.BPMMaxOverride != nil {
		bpmMax = req.BPMMaxOverride
	}

	// Candidate selection ORs the dimensions so partial matches stay in;
	// the score ladder below rewards samples that match more of them.
	candidates, err := s.sampleRepo.PreferenceCandidates(ctx, genres, bpmMin, bpmMax, keys)
	if err != nil {
		return nil, err
	}

	recs := make([]*model.Recommendation, 0, len(candidates))
	for _, sample := range candidates {
		score, reason := ScoreSample(sample, genres, bpmMin, bpmMax, keys)
		recs = append(recs, &model.Recommendation{Sample: sample, Score: score, Reason: reason})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].DownloadCount > recs[j].DownloadCount
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}

	s.logServed(req.UserID, recs)

	return &model.RecommendationResponse{
		Recommendations: recs,
		FiltersApplied: model.RecommendationFilters{
			Genres: genres,
			BPMMin: bpmMin,
			BPMMax: bpmMax,
			Keys:   keys,
		},
		UserID: req.UserID,
	}, nil
}

// ScoreSample computes the preference-overlap score and match reason for
// one candidate. Absent optional fields contribute nothing rather than
// failing.
func ScoreSample(sample *model.Sample, genres []string, bpmMin, bpmMax *int, keys []string) (float64, string) {
	genreMatch := len(genres) > 0 && containsFold(genres, sample.Genre)
	bpmMatch := bpmMin != nil && bpmMax != nil && sample.BPM != nil &&
		*sample.BPM >= *bpmMin && *sample.BPM <= *bpmMax
	keyMatch := len(keys) > 0 && containsFold(keys, sample.Key)

	var score float64
	if genreMatch {
		score += dimensionWeight
	}
	if bpmMatch {
		score += dimensionWeight
	}
	if keyMatch {
		score += dimensionWeight
	}

	score += math.Min(float64(sample.DownloadCount)/popularityDivisor, popularityCap)

	if sample.Metadata != nil && sample.Metadata.EnergyLevel != nil {
		score += energyWeight * (1 - math.Abs(float64(*sample.Metadata.EnergyLevel)-energyIdeal)/energyIdeal)
	}

	return score, matchReason(genreMatch, bpmMatch, keyMatch)
}

// matchReason picks the most specific matching combination, in fixed
// priority order: all three, then the two-dimension pairs in enumeration
// order, then single dimensions, then the popularity fallback.
func matchReason(genreMatch, bpmMatch, keyMatch bool) string {
	switch {
	case genreMatch && bpmMatch && keyMatch:
		return model.ReasonAllPreferences
	case genreMatch && bpmMatch:
		return model.ReasonGenreAndBPM
	case genreMatch && keyMatch:
		return model.ReasonGenreAndKey
	case bpmMatch && keyMatch:
		return model.ReasonBPMAndKey
	case genreMatch:
		return model.ReasonGenre
	case bpmMatch:
		return model.ReasonBPM
	case keyMatch:
		return model.ReasonKey
	default:
		return model.ReasonPopular
	}
}

// trendingFallback serves anonymous callers from the trending scorer,
// with the raw download count as an uncapped score.
func (s *Scorer) trendingFallback(ctx context.Context, limit int) (*model.RecommendationResponse, error) {
	trendingResp, err := s.trending.Trending(ctx, &model.TrendingRequest{Limit: limit})
	if err != nil {
		return nil, err
	}

	recs := make([]*model.Recommendation, 0, len(trendingResp.TrendingSamples))
	for _, ts := range trendingResp.TrendingSamples {
		recs = append(recs, &model.Recommendation{
			Sample: ts.Sample,
			Score:  float64(ts.DownloadCount) / trendingScoreScale,
			Reason: model.ReasonTrending,
		})
	}

	return &model.RecommendationResponse{
		Recommendations: recs,
		FiltersApplied:  model.RecommendationFilters{},
	}, nil
}

// logServed records the top recommendations as interactions for later
// analytics. Best-effort: it runs detached and never fails the response.
func (s *Scorer) logServed(userID string, recs []*model.Recommendation) {
	if s.interactions == nil || len(recs) == 0 {
		return
	}

	top := recs
	if len(top) > loggedTopN {
		top = top[:loggedTopN]
	}
	interactions := make([]model.Interaction, 0, len(top))
	for _, rec := range top {
		interactions = append(interactions, model.Interaction{
			UserID:   userID,
			SampleID: rec.ID,
			Action:   "recommended",
			Score:    rec.Score,
			Reason:   rec.Reason,
		})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.interactions.CreateBatch(ctx, interactions); err != nil {
			logger.Warn("failed to log recommendation interactions",
				logger.String("userId", userID), logger.ErrorField(err))
		}
	}()
}

func containsFold(values []string, target string) bool {
	if target == "" {
		return false
	}
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}
