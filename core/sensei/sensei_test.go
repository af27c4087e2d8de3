package sensei

import (
	"reflect"
	"testing"
)

func TestParsePrompt(t *testing.T) {
	t.Run("genre with explicit instrument", func(t *testing.T) {
		intent := ParsePrompt("I need some dark trap kicks")
		if intent.Genre != "trap" {
			t.Errorf("Genre = %q, want trap", intent.Genre)
		}
		if !reflect.DeepEqual(intent.Instruments, []string{"kick"}) {
			t.Errorf("Instruments = %v, want [kick]", intent.Instruments)
		}
		if !reflect.DeepEqual(intent.Moods, []string{"dark", "trap"}) {
			t.Errorf("Moods = %v, want [dark trap]", intent.Moods)
		}
	})

	t.Run("genre alone expands to its components", func(t *testing.T) {
		intent := ParsePrompt("something house flavored")
		if intent.Genre != "house" {
			t.Errorf("Genre = %q, want house", intent.Genre)
		}
		if !reflect.DeepEqual(intent.Instruments, []string{"kick", "clap", "hat"}) {
			t.Errorf("Instruments = %v, want house components", intent.Instruments)
		}
	})

	t.Run("instrument limit", func(t *testing.T) {
		intent := ParsePrompt("kicks snares hats claps and percs")
		if len(intent.Instruments) != 3 {
			t.Errorf("Instruments = %v, want at most 3", intent.Instruments)
		}
	})

	t.Run("mood limit", func(t *testing.T) {
		intent := ParsePrompt("dark hard punchy crispy sounds")
		if len(intent.Moods) != 2 {
			t.Errorf("Moods = %v, want at most 2", intent.Moods)
		}
	})

	t.Run("bpm extraction", func(t *testing.T) {
		intent := ParsePrompt("140 bpm 808s")
		if intent.BPM == nil || *intent.BPM != 140 {
			t.Errorf("BPM = %v, want 140", intent.BPM)
		}
	})

	t.Run("bpm without unit is ignored", func(t *testing.T) {
		intent := ParsePrompt("give me 140 of your finest kicks")
		if intent.BPM != nil {
			t.Errorf("BPM = %v, want nil", *intent.BPM)
		}
	})

	t.Run("multi-word genre wins over substring", func(t *testing.T) {
		intent := ParsePrompt("classic boom bap snares")
		if intent.Genre != "boom bap" {
			t.Errorf("Genre = %q, want boom bap", intent.Genre)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		intent := ParsePrompt("how is the weather today")
		if !intent.Empty() {
			t.Errorf("intent = %+v, want empty", intent)
		}
	})

	t.Run("keywords match whole words only", func(t *testing.T) {
		// "hat" must not trigger inside "that", "sub" not inside "subject".
		intent := ParsePrompt("that subject is interesting")
		if !intent.Empty() {
			t.Errorf("intent = %+v, want empty", intent)
		}
	})
}

func TestToSearchRequest(t *testing.T) {
	bpm := 140
	intent := &Intent{
		Genre:       "trap",
		Instruments: []string{"kick", "808"},
		Moods:       []string{"dark"},
		BPM:         &bpm,
	}

	req := intent.ToSearchRequest(5)

	if req.Limit != 5 {
		t.Errorf("Limit = %d, want 5", req.Limit)
	}
	if !reflect.DeepEqual(req.Genres, []string{"trap"}) {
		t.Errorf("Genres = %v, want [trap]", req.Genres)
	}
	if !reflect.DeepEqual(req.InstrumentTypes, []string{"kick", "808"}) {
		t.Errorf("InstrumentTypes = %v, want [kick 808]", req.InstrumentTypes)
	}
	if !reflect.DeepEqual(req.Tags, []string{"dark"}) {
		t.Errorf("Tags = %v, want [dark]", req.Tags)
	}
	if req.BPMMin == nil || *req.BPMMin != 130 || req.BPMMax == nil || *req.BPMMax != 150 {
		t.Errorf("BPM range = %v..%v, want 130..150", req.BPMMin, req.BPMMax)
	}
}

func TestToSearchRequestClampsLowBPM(t *testing.T) {
	bpm := 5
	req := (&Intent{BPM: &bpm}).ToSearchRequest(5)
	if req.BPMMin == nil || *req.BPMMin != 1 {
		t.Errorf("BPMMin = %v, want 1", req.BPMMin)
	}
}

func TestDescribe(t *testing.T) {
	bpm := 140
	tests := []struct {
		name   string
		intent *Intent
		want   string
	}{
		{"empty", &Intent{}, "sounds"},
		{"genre only", &Intent{Genre: "trap"}, "trap"},
		{
			"everything",
			&Intent{Genre: "trap", Instruments: []string{"kick", "808"}, Moods: []string{"dark"}, BPM: &bpm},
			"dark trap kick, 808 around 140 BPM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.intent.Describe(); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}
