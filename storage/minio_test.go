package storage

import (
	"context"
	"strings"
	"testing"
)

func TestContentTypeForObject(t *testing.T) {
	tests := []struct {
		object string
		want   string
	}{
		{"kicks/dark_kick.wav", "audio/wav"},
		{"loops/trap_loop.MP3", "audio/mpeg"},
		{"melodies/keys.flac", "audio/flac"},
		{"unknown/file.bin", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.object, func(t *testing.T) {
			if got := ContentTypeForObject(tt.object); got != tt.want {
				t.Errorf("ContentTypeForObject(%q) = %q, want %q", tt.object, got, tt.want)
			}
		})
	}
}

func TestIsAllowedAudioObject(t *testing.T) {
	if !IsAllowedAudioObject("808s/sub.wav") {
		t.Error("wav should be allowed")
	}
	if IsAllowedAudioObject("scripts/setup.sh") {
		t.Error("sh should not be allowed")
	}
}

func TestUploadSampleValidation(t *testing.T) {
	ctx := context.Background()

	if _, err := UploadSample(ctx, "kicks/big.wav", strings.NewReader(""), MaxSampleFileSize+1); err == nil {
		t.Error("oversized upload accepted")
	}
	if _, err := UploadSample(ctx, "notes/readme.txt", strings.NewReader(""), 10); err == nil {
		t.Error("non-audio object accepted")
	}
}
