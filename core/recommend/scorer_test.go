package recommend

import (
	"math"
	"testing"

	"beatsensei/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func intPtr(v int) *int { return &v }

func sample(genre string, bpm *int, key string, downloads int64) *model.Sample {
	return &model.Sample{
		Genre:         genre,
		BPM:           bpm,
		Key:           key,
		DownloadCount: downloads,
	}
}

func TestScoreSample(t *testing.T) {
	genres := []string{"trap"}
	keys := []string{"Am"}

	t.Run("all three dimensions match", func(t *testing.T) {
		score, reason := ScoreSample(sample("trap", intPtr(140), "Am", 0), genres, intPtr(130), intPtr(150), keys)
		if !almostEqual(score, 0.9) {
			t.Errorf("score = %v, want 0.9", score)
		}
		if reason != model.ReasonAllPreferences {
			t.Errorf("reason = %q, want %q", reason, model.ReasonAllPreferences)
		}
	})

	t.Run("popularity boost is capped", func(t *testing.T) {
		score, _ := ScoreSample(sample("trap", intPtr(140), "Am", 1_000_000), genres, intPtr(130), intPtr(150), keys)
		if !almostEqual(score, 1.0) {
			t.Errorf("score = %v, want 1.0", score)
		}
	})

	t.Run("popularity boost below cap scales linearly", func(t *testing.T) {
		score, reason := ScoreSample(sample("jazz", nil, "", 500), genres, nil, nil, keys)
		if !almostEqual(score, 0.05) {
			t.Errorf("score = %v, want 0.05", score)
		}
		if reason != model.ReasonPopular {
			t.Errorf("reason = %q, want %q", reason, model.ReasonPopular)
		}
	})

	t.Run("genre matching ignores case", func(t *testing.T) {
		score, reason := ScoreSample(sample("Trap", nil, "", 0), genres, nil, nil, nil)
		if !almostEqual(score, 0.3) {
			t.Errorf("score = %v, want 0.3", score)
		}
		if reason != model.ReasonGenre {
			t.Errorf("reason = %q, want %q", reason, model.ReasonGenre)
		}
	})

	t.Run("bpm needs both bounds and a sample tempo", func(t *testing.T) {
		score, _ := ScoreSample(sample("jazz", intPtr(140), "", 0), nil, intPtr(130), nil, nil)
		if !almostEqual(score, 0) {
			t.Errorf("score with one bound = %v, want 0", score)
		}
		score, _ = ScoreSample(sample("jazz", nil, "", 0), nil, intPtr(130), intPtr(150), nil)
		if !almostEqual(score, 0) {
			t.Errorf("score with nil sample BPM = %v, want 0", score)
		}
	})

	t.Run("energy term rewards proximity to the ideal", func(t *testing.T) {
		s := sample("jazz", nil, "", 0)
		s.Metadata = &model.SampleMetadata{EnergyLevel: intPtr(10)}
		score, _ := ScoreSample(s, nil, nil, nil, nil)
		want := 0.1 * (1 - 3.5/6.5)
		if !almostEqual(score, want) {
			t.Errorf("score = %v, want %v", score, want)
		}
	})
}

func TestMatchReason(t *testing.T) {
	tests := []struct {
		name                        string
		genreMatch, bpmMatch, keyOK bool
		want                        string
	}{
		{"all", true, true, true, model.ReasonAllPreferences},
		{"genre and bpm", true, true, false, model.ReasonGenreAndBPM},
		{"genre and key", true, false, true, model.ReasonGenreAndKey},
		{"bpm and key", false, true, true, model.ReasonBPMAndKey},
		{"genre only", true, false, false, model.ReasonGenre},
		{"bpm only", false, true, false, model.ReasonBPM},
		{"key only", false, false, true, model.ReasonKey},
		{"none", false, false, false, model.ReasonPopular},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchReason(tt.genreMatch, tt.bpmMatch, tt.keyOK)
			if got != tt.want {
				t.Errorf("matchReason() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContainsFold(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		target string
		want   bool
	}{
		{"exact", []string{"trap", "house"}, "trap", true},
		{"case insensitive", []string{"Trap"}, "trap", true},
		{"whitespace trimmed", []string{" trap "}, "trap", true},
		{"missing", []string{"house"}, "trap", false},
		{"empty target never matches", []string{""}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := containsFold(tt.values, tt.target); got != tt.want {
				t.Errorf("containsFold(%v, %q) = %v, want %v", tt.values, tt.target, got, tt.want)
			}
		})
	}
}
