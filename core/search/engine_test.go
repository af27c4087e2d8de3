package search

import (
	"testing"
	"time"

	"beatsensei/model"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestNormalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		req := &model.SearchRequest{}
		Normalize(req)
		if req.Limit != model.DefaultSearchLimit {
			t.Errorf("Limit = %d, want %d", req.Limit, model.DefaultSearchLimit)
		}
		if req.Offset != 0 {
			t.Errorf("Offset = %d, want 0", req.Offset)
		}
		// No query means relevance has nothing to rank on.
		if req.SortBy != model.SortDownloads || req.SortOrder != model.OrderDesc {
			t.Errorf("sort = %s/%s, want downloads/desc", req.SortBy, req.SortOrder)
		}
	})

	t.Run("limit is capped", func(t *testing.T) {
		req := &model.SearchRequest{Limit: 10000}
		Normalize(req)
		if req.Limit != model.MaxSearchLimit {
			t.Errorf("Limit = %d, want %d", req.Limit, model.MaxSearchLimit)
		}
	})

	t.Run("negative offset is clamped", func(t *testing.T) {
		req := &model.SearchRequest{Offset: -5}
		Normalize(req)
		if req.Offset != 0 {
			t.Errorf("Offset = %d, want 0", req.Offset)
		}
	})

	t.Run("relevance survives with a query", func(t *testing.T) {
		req := &model.SearchRequest{Query: "dark kick", SortBy: model.SortRelevance}
		Normalize(req)
		if req.SortBy != model.SortRelevance {
			t.Errorf("SortBy = %s, want relevance", req.SortBy)
		}
	})

	t.Run("unknown sort falls back", func(t *testing.T) {
		req := &model.SearchRequest{Query: "kick", SortBy: "priciest"}
		Normalize(req)
		if req.SortBy != model.SortRelevance {
			t.Errorf("SortBy = %s, want relevance", req.SortBy)
		}
	})

	t.Run("explicit asc is kept", func(t *testing.T) {
		req := &model.SearchRequest{SortBy: model.SortBPM, SortOrder: model.OrderAsc}
		Normalize(req)
		if req.SortOrder != model.OrderAsc {
			t.Errorf("SortOrder = %s, want asc", req.SortOrder)
		}
	})
}

func TestHasInvalidRange(t *testing.T) {
	earlier := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		req  *model.SearchRequest
		want bool
	}{
		{"empty request", &model.SearchRequest{}, false},
		{"valid bpm range", &model.SearchRequest{BPMMin: intPtr(100), BPMMax: intPtr(150)}, false},
		{"inverted bpm range", &model.SearchRequest{BPMMin: intPtr(150), BPMMax: intPtr(100)}, true},
		{"single bpm bound", &model.SearchRequest{BPMMin: intPtr(150)}, false},
		{"equal bounds are valid", &model.SearchRequest{BPMMin: intPtr(140), BPMMax: intPtr(140)}, false},
		{"inverted energy range", &model.SearchRequest{EnergyMin: intPtr(8), EnergyMax: intPtr(2)}, true},
		{"inverted duration range", &model.SearchRequest{DurationMin: floatPtr(10), DurationMax: floatPtr(1)}, true},
		{"inverted size range", &model.SearchRequest{FileSizeMin: int64Ptr(2000), FileSizeMax: int64Ptr(100)}, true},
		{"valid date range", &model.SearchRequest{UploadedAfter: &earlier, UploadedBefore: &later}, false},
		{"inverted date range", &model.SearchRequest{UploadedAfter: &later, UploadedBefore: &earlier}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasInvalidRange(tt.req); got != tt.want {
				t.Errorf("HasInvalidRange() = %v, want %v", got, tt.want)
			}
		})
	}
}

func int64Ptr(v int64) *int64 { return &v }
