package trend

import (
	"context"
	"sort"
	"time"

	"beatsensei/model"
	"beatsensei/repository"
)

// Scoring weights for the popularity/recency blend.
const (
	recentWeight   = 0.7
	totalWeight    = 0.3
	recencyDivisor = 70.0
)

// Scorer computes trend scores over a candidate set.
type Scorer struct {
	sampleRepo repository.SampleRepository
}

// NewScorer creates a new trending Scorer.
func NewScorer(sampleRepo repository.SampleRepository) *Scorer {
	return &Scorer{sampleRepo: sampleRepo}
}

// WindowStart maps a timeframe to the start of its rolling window.
// A nil result means all-time. Unknown timeframes fall back to week.
func WindowStart(timeframe string, now time.Time) *time.Time {
	var since time.Time
	switch timeframe {
	case model.TimeframeDay:
		since = now.AddDate(0, 0, -1)
	case model.TimeframeMonth:
		since = now.AddDate(0, -1, 0)
	case model.TimeframeAll:
		return nil
	default: // week
		since = now.AddDate(0, 0, -7)
	}
	return &since
}

func normalizeTimeframe(timeframe string) string {
	switch timeframe {
	case model.TimeframeDay, model.TimeframeWeek, model.TimeframeMonth, model.TimeframeAll:
		return timeframe
	default:
		return model.TimeframeWeek
	}
}

// Trending returns the top-N samples by trend score for the requested
// window, plus aggregate statistics over the returned set.
func (s *Scorer) Trending(ctx context.Context, req *model.TrendingRequest) (*model.TrendingResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = model.DefaultTrendingLimit
	}
	timeframe := normalizeTimeframe(req.Timeframe)
	now := time.Now()

	candidates, err := s.sampleRepo.TrendingCandidates(ctx, WindowStart(timeframe, now), req.Genre, req.BPMMin, req.BPMMax)
	if err != nil {
		return nil, err
	}

	Score(candidates, now)

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].TrendScore != candidates[j].TrendScore {
			return candidates[i].TrendScore > candidates[j].TrendScore
		}
		// Ties broken by total download count descending.
		return candidates[i].DownloadCount > candidates[j].DownloadCount
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return &model.TrendingResponse{
		TrendingSamples: candidates,
		Statistics:      statistics(candidates),
		Timeframe:       timeframe,
	}, nil
}

// Score computes trend scores in place over the whole candidate set.
// Counts are normalized by the maximum observed in the set, substituting
// 1 when the maximum is zero to avoid division by zero.
func Score(candidates []*model.TrendingSample, now time.Time) {
	var maxRecent, maxTotal int64
	for _, c := range candidates {
		if c.RecentDownloads > maxRecent {
			maxRecent = c.RecentDownloads
		}
		if c.DownloadCount > maxTotal {
			maxTotal = c.DownloadCount
		}
	}
	if maxRecent == 0 {
		maxRecent = 1
	}
	if maxTotal == 0 {
		maxTotal = 1
	}

	for _, c := range candidates {
		c.TrendScore = recentWeight*float64(c.RecentDownloads)/float64(maxRecent) +
			totalWeight*float64(c.DownloadCount)/float64(maxTotal) +
			RecencyBonus(c.CreatedAt, now)
	}
}

// RecencyBonus rewards freshly uploaded samples independent of download
// volume: max(0, (7 - daysSinceUpload) / 70) within the upload window,
// zero afterwards.
func RecencyBonus(uploaded, now time.Time) float64 {
	days := now.Sub(uploaded).Hours() / 24
	if days < 0 {
		days = 0
	}
	if days > model.RecentUploadWindowDays {
		return 0
	}
	bonus := (model.RecentUploadWindowDays - days) / recencyDivisor
	if bonus < 0 {
		return 0
	}
	return bonus
}

// statistics aggregates the top set. An empty set yields zero values.
func statistics(top []*model.TrendingSample) model.TrendingStats {
	stats := model.TrendingStats{PopularGenres: []string{}}

	genreCounts := make(map[string]int)
	var bpmSum, bpmCount int
	for _, c := range top {
		stats.TotalRecentDownloads += c.RecentDownloads
		if c.Genre != "" {
			genreCounts[c.Genre]++
		}
		if c.BPM != nil {
			bpmSum += *c.BPM
			bpmCount++
		}
	}

	genres := make([]string, 0, len(genreCounts))
	for g := range genreCounts {
		genres = append(genres, g)
	}
	sort.Slice(genres, func(i, j int) bool {
		if genreCounts[genres[i]] != genreCounts[genres[j]] {
			return genreCounts[genres[i]] > genreCounts[genres[j]]
		}
		return genres[i] < genres[j]
	})
	if len(genres) > 5 {
		genres = genres[:5]
	}
	stats.PopularGenres = genres

	if bpmCount > 0 {
		avg := float64(bpmSum) / float64(bpmCount)
		stats.AverageBPM = &avg
	}

	return stats
}
