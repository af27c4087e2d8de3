package sensei

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"beatsensei/model"
)

// Keyword tables for prompt parsing. Genre entries are ordered so that
// multi-word genres win over their substrings, and each genre carries the
// instrument components a typical loop in that style is built from.
var genreComponents = []struct {
	genre      string
	components []string
}{
	{"boom bap", []string{"kick", "snare", "hat"}},
	{"hip hop", []string{"kick", "snare", "hat", "808"}},
	{"dubstep", []string{"kick", "snare", "hat", "bass"}},
	{"techno", []string{"kick", "hat", "perc"}},
	{"house", []string{"kick", "clap", "hat"}},
	{"drill", []string{"kick", "snare", "hat", "808"}},
	{"lo-fi", []string{"kick", "snare", "hat", "perc"}},
	{"trap", []string{"kick", "snare", "hat", "808"}},
}

var instrumentKeywords = []struct {
	instrument string
	keywords   []string
}{
	{"kick", []string{"kick", "kicks"}},
	{"snare", []string{"snare", "snares", "rim"}},
	{"hat", []string{"hat", "hats", "hihat", "hi-hat"}},
	{"808", []string{"808", "808s", "sub", "bass"}},
	{"clap", []string{"clap", "claps"}},
	{"perc", []string{"perc", "percussion", "shaker", "tambourine"}},
	{"melody", []string{"melody", "synth", "keys", "piano", "guitar"}},
	{"fx", []string{"fx", "effect", "riser", "impact"}},
}

var moodKeywords = []struct {
	mood     string
	keywords []string
}{
	{"dark", []string{"dark", "evil", "sinister", "grim", "horror"}},
	{"hard", []string{"hard", "aggressive", "heavy", "loud", "distorted"}},
	{"soft", []string{"soft", "gentle", "mellow", "smooth", "warm", "chill"}},
	{"trap", []string{"trap", "drill", "plugg"}},
	{"classic", []string{"classic", "vintage", "old", "retro", "boom", "bap"}},
	{"crispy", []string{"crispy", "crisp", "clean", "sharp"}},
	{"punchy", []string{"punchy", "punch", "knock", "hit"}},
	{"acoustic", []string{"acoustic", "organic", "natural", "live"}},
	{"electronic", []string{"electronic", "synth", "digital"}},
}

var bpmPattern = regexp.MustCompile(`(\d{2,3})\s*bpm`)

const (
	maxInstruments = 3
	maxMoods       = 2
	bpmTolerance   = 10
)

// Intent is the structured reading of a free-text prompt.
type Intent struct {
	Genre       string   `json:"genre,omitempty"`
	Instruments []string `json:"instruments,omitempty"`
	Moods       []string `json:"moods,omitempty"`
	BPM         *int     `json:"bpm,omitempty"`
}

// Empty reports whether nothing recognizable was found in the prompt.
func (in *Intent) Empty() bool {
	return in.Genre == "" && len(in.Instruments) == 0 && len(in.Moods) == 0 && in.BPM == nil
}

// ParsePrompt extracts a search intent from a free-text prompt using the
// keyword tables. When instruments are not named explicitly but a genre
// is, the genre's typical components stand in for them.
func ParsePrompt(prompt string) *Intent {
	lower := strings.ToLower(prompt)
	intent := &Intent{}

	for _, entry := range genreComponents {
		if strings.Contains(lower, entry.genre) {
			intent.Genre = entry.genre
			break
		}
	}

	for _, entry := range instrumentKeywords {
		if len(intent.Instruments) >= maxInstruments {
			break
		}
		if containsAnyWord(lower, entry.keywords) {
			intent.Instruments = append(intent.Instruments, entry.instrument)
		}
	}
	if len(intent.Instruments) == 0 && intent.Genre != "" {
		for _, entry := range genreComponents {
			if entry.genre == intent.Genre {
				components := entry.components
				if len(components) > maxInstruments {
					components = components[:maxInstruments]
				}
				intent.Instruments = append(intent.Instruments, components...)
				break
			}
		}
	}

	for _, entry := range moodKeywords {
		if len(intent.Moods) >= maxMoods {
			break
		}
		if containsAnyWord(lower, entry.keywords) {
			intent.Moods = append(intent.Moods, entry.mood)
		}
	}

	if m := bpmPattern.FindStringSubmatch(lower); len(m) == 2 {
		if bpm, err := strconv.Atoi(m[1]); err == nil {
			intent.BPM = &bpm
		}
	}

	return intent
}

// ToSearchRequest converts the intent into a structured filter request.
// A detected tempo becomes a tolerance window rather than an exact match.
func (in *Intent) ToSearchRequest(limit int) *model.SearchRequest {
	req := &model.SearchRequest{
		Limit:     limit,
		SortBy:    model.SortDownloads,
		SortOrder: model.OrderDesc,
	}
	if in.Genre != "" {
		req.Genres = []string{in.Genre}
	}
	if len(in.Instruments) > 0 {
		req.InstrumentTypes = append(req.InstrumentTypes, in.Instruments...)
	}
	if len(in.Moods) > 0 {
		req.Tags = append(req.Tags, in.Moods...)
	}
	if in.BPM != nil {
		bpmMin := *in.BPM - bpmTolerance
		bpmMax := *in.BPM + bpmTolerance
		if bpmMin < 1 {
			bpmMin = 1
		}
		req.BPMMin = &bpmMin
		req.BPMMax = &bpmMax
	}
	return req
}

// Describe renders the intent as the phrase echoed back in replies.
func (in *Intent) Describe() string {
	var parts []string
	if len(in.Moods) > 0 {
		parts = append(parts, strings.Join(in.Moods, " "))
	}
	if in.Genre != "" {
		parts = append(parts, in.Genre)
	}
	if len(in.Instruments) > 0 {
		parts = append(parts, strings.Join(in.Instruments, ", "))
	}
	if in.BPM != nil {
		parts = append(parts, fmt.Sprintf("around %d BPM", *in.BPM))
	}
	if len(parts) == 0 {
		return "sounds"
	}
	return strings.Join(parts, " ")
}

var greetings = []string{
	"Yo, what's good! Ready to dig through the crates?",
	"Sensei in the building! What kind of sound you hunting for?",
	"What up! Let's cook up something special.",
	"Ayy, the sample master is here. Tell me what you need.",
	"Welcome to the lab! What we makin' today?",
}

// Greeting returns a random opener for a new chat connection.
func Greeting() string {
	return greetings[rand.Intn(len(greetings))]
}

// SearchIntro returns the line sent while a lookup is running.
func SearchIntro(what string) string {
	intros := []string{
		"Aight, let me dig through the stash for %s...",
		"Say less. Checking the crates for %s...",
		"I got you. Looking for %s in the collection...",
		"Bet. Let me see what we got matching %s...",
	}
	return fmt.Sprintf(intros[rand.Intn(len(intros))], what)
}

// ResultsReply returns the line sent alongside found samples.
func ResultsReply(count int, what string) string {
	if count == 0 {
		return NoResultsReply(what)
	}
	if count == 1 {
		return fmt.Sprintf("Found one that slaps. Here's your %s.", what)
	}
	return fmt.Sprintf("That's heat. Pulled %d matches for %s.", count, what)
}

// NoResultsReply returns the line sent when nothing matched.
func NoResultsReply(what string) string {
	responses := []string{
		"Damn, nothing matching %s in the stash.",
		"The crates came up empty for %s.",
		"Nothing hitting for %s right now.",
	}
	return fmt.Sprintf(responses[rand.Intn(len(responses))], what)
}

// FallbackReply asks for a usable prompt when parsing found nothing.
func FallbackReply() string {
	return "Tell me what kind of sound you need, and I'll find it in the library. Try 'dark trap kicks' or '140 bpm 808s'."
}

// containsAnyWord matches keywords on word boundaries so that short
// keywords like "hat" do not trigger inside unrelated words.
func containsAnyWord(text string, keywords []string) bool {
	for _, kw := range keywords {
		if containsWord(text, kw) {
			return true
		}
	}
	return false
}

func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
