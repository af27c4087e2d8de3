package model

import (
	"strings"
	"time"
)

// Sample represents an audio sample in the library.
type Sample struct {
	ID            int64     `json:"id"`
	Filename      string    `json:"filename"`
	FileURL       string    `json:"fileUrl"`
	Title         string    `json:"title"`
	BPM           *int      `json:"bpm,omitempty"`
	Key           string    `json:"key,omitempty"`
	Genre         string    `json:"genre,omitempty"`
	Tags          []string  `json:"tags"`
	Duration      *float64  `json:"duration,omitempty"` // seconds
	FileSize      *int64    `json:"fileSize,omitempty"` // bytes
	DownloadCount int64     `json:"downloadCount"`
	PlayCount     int64     `json:"playCount"`
	LikeCount     int64     `json:"likeCount"`
	Featured      bool      `json:"featured"`
	Premium       bool      `json:"premium"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// Metadata is the optional 1:1 extension row, present when joined.
	Metadata *SampleMetadata `json:"metadata,omitempty"`
}

// SampleMetadata is the optional extended metadata for a sample.
// At most one record exists per sample.
type SampleMetadata struct {
	ID             int64    `json:"id"`
	SampleID       int64    `json:"sampleId"`
	InstrumentType string   `json:"instrumentType,omitempty"`
	MoodTags       []string `json:"moodTags"`
	EnergyLevel    *int     `json:"energyLevel,omitempty"` // 1-10 inclusive
	EraDecade      string   `json:"eraDecade,omitempty"`
	AudioFormat    string   `json:"audioFormat,omitempty"`
	SampleRate     *int     `json:"sampleRate,omitempty"`
	BitDepth       *int     `json:"bitDepth,omitempty"`
	Channels       *int     `json:"channels,omitempty"`
}

// JoinTags serializes a tag set into the comma-separated column format.
func JoinTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(strings.ToLower(t))
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return strings.Join(cleaned, ",")
}

// SplitTags parses the comma-separated column format back into a tag set.
func SplitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
