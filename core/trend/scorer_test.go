package trend

import (
	"math"
	"testing"
	"time"

	"beatsensei/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func candidate(id int64, recent, total int64, uploaded time.Time) *model.TrendingSample {
	return &model.TrendingSample{
		Sample: &model.Sample{
			ID:            id,
			DownloadCount: total,
			CreatedAt:     uploaded,
		},
		RecentDownloads: recent,
	}
}

func TestRecencyBonus(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		uploaded time.Time
		want     float64
	}{
		{"uploaded just now", now, 0.1},
		{"uploaded 3.5 days ago", now.Add(-84 * time.Hour), 0.05},
		{"uploaded exactly 7 days ago", now.AddDate(0, 0, -7), 0},
		{"uploaded 30 days ago", now.AddDate(0, 0, -30), 0},
		{"uploaded in the future", now.Add(time.Hour), 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecencyBonus(tt.uploaded, now)
			if !almostEqual(got, tt.want) {
				t.Errorf("RecencyBonus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScore(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	old := now.AddDate(0, -2, 0)

	t.Run("normalizes by set maxima", func(t *testing.T) {
		candidates := []*model.TrendingSample{
			candidate(1, 100, 1000, old),
			candidate(2, 50, 500, old),
		}
		Score(candidates, now)

		if !almostEqual(candidates[0].TrendScore, 1.0) {
			t.Errorf("max candidate score = %v, want 1.0", candidates[0].TrendScore)
		}
		if !almostEqual(candidates[1].TrendScore, 0.5) {
			t.Errorf("half candidate score = %v, want 0.5", candidates[1].TrendScore)
		}
	})

	t.Run("zero maxima do not divide by zero", func(t *testing.T) {
		candidates := []*model.TrendingSample{
			candidate(1, 0, 0, old),
			candidate(2, 0, 0, old),
		}
		Score(candidates, now)

		for _, c := range candidates {
			if !almostEqual(c.TrendScore, 0) {
				t.Errorf("score = %v, want 0", c.TrendScore)
			}
		}
	})

	t.Run("fresh upload earns a bonus over equal downloads", func(t *testing.T) {
		candidates := []*model.TrendingSample{
			candidate(1, 10, 100, old),
			candidate(2, 10, 100, now.AddDate(0, 0, -1)),
		}
		Score(candidates, now)

		if candidates[1].TrendScore <= candidates[0].TrendScore {
			t.Errorf("fresh score %v should exceed stale score %v",
				candidates[1].TrendScore, candidates[0].TrendScore)
		}
	})

	t.Run("recent downloads outweigh totals", func(t *testing.T) {
		// Same totals, different recent counts: recent share dominates.
		candidates := []*model.TrendingSample{
			candidate(1, 100, 1000, old),
			candidate(2, 10, 1000, old),
		}
		Score(candidates, now)

		diff := candidates[0].TrendScore - candidates[1].TrendScore
		if !almostEqual(diff, 0.7*0.9) {
			t.Errorf("score gap = %v, want %v", diff, 0.7*0.9)
		}
	})
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		timeframe string
		want      *time.Time
	}{
		{model.TimeframeDay, timePtr(now.AddDate(0, 0, -1))},
		{model.TimeframeWeek, timePtr(now.AddDate(0, 0, -7))},
		{model.TimeframeMonth, timePtr(now.AddDate(0, -1, 0))},
		{model.TimeframeAll, nil},
		{"bogus", timePtr(now.AddDate(0, 0, -7))},
	}

	for _, tt := range tests {
		t.Run(tt.timeframe, func(t *testing.T) {
			got := WindowStart(tt.timeframe, now)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("WindowStart(%q) nil-ness = %v, want %v", tt.timeframe, got == nil, tt.want == nil)
			}
			if got != nil && !got.Equal(*tt.want) {
				t.Errorf("WindowStart(%q) = %v, want %v", tt.timeframe, got, tt.want)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestStatistics(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	t.Run("empty set yields zero values", func(t *testing.T) {
		stats := statistics(nil)
		if stats.TotalRecentDownloads != 0 {
			t.Errorf("TotalRecentDownloads = %d, want 0", stats.TotalRecentDownloads)
		}
		if len(stats.PopularGenres) != 0 {
			t.Errorf("PopularGenres = %v, want empty", stats.PopularGenres)
		}
		if stats.AverageBPM != nil {
			t.Errorf("AverageBPM = %v, want nil", *stats.AverageBPM)
		}
	})

	t.Run("aggregates the top set", func(t *testing.T) {
		bpm140, bpm160 := 140, 160
		top := []*model.TrendingSample{
			candidate(1, 10, 100, now),
			candidate(2, 20, 200, now),
			candidate(3, 5, 50, now),
		}
		top[0].Genre = "trap"
		top[0].BPM = &bpm140
		top[1].Genre = "trap"
		top[1].BPM = &bpm160
		top[2].Genre = "house"

		stats := statistics(top)
		if stats.TotalRecentDownloads != 35 {
			t.Errorf("TotalRecentDownloads = %d, want 35", stats.TotalRecentDownloads)
		}
		if len(stats.PopularGenres) != 2 || stats.PopularGenres[0] != "trap" {
			t.Errorf("PopularGenres = %v, want trap first", stats.PopularGenres)
		}
		if stats.AverageBPM == nil || !almostEqual(*stats.AverageBPM, 150) {
			t.Errorf("AverageBPM = %v, want 150", stats.AverageBPM)
		}
	})
}
