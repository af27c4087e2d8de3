package model

import (
	"reflect"
	"testing"
)

func TestJoinTags(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want string
	}{
		{"nil", nil, ""},
		{"simple", []string{"dark", "trap"}, "dark,trap"},
		{"lowercased and trimmed", []string{" Dark ", "TRAP"}, "dark,trap"},
		{"empty entries dropped", []string{"dark", "", "  "}, "dark"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinTags(tt.tags); got != tt.want {
				t.Errorf("JoinTags(%v) = %q, want %q", tt.tags, got, tt.want)
			}
		})
	}
}

func TestSplitTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"simple", "dark,trap", []string{"dark", "trap"}},
		{"spaces trimmed", " dark , trap ", []string{"dark", "trap"}},
		{"empty segments dropped", "dark,,trap,", []string{"dark", "trap"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitTags(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitTags(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
