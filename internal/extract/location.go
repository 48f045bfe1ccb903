package extract

import (
	"regexp"
	"strings"
)

// AlertPlaces is searched, in order, against alert entries.
var AlertPlaces = []string{
	"Sudbury", "North Bay", "Timmins", "Sault Ste Marie", "Sault Ste. Marie",
	"Thunder Bay", "Elliot Lake", "Temiskaming Shores", "Cochrane", "Kirkland Lake",
	"Hearst", "Kapuskasing", "Smooth Rock Falls",
	"Ontario", "Toronto", "Ottawa", "Hamilton", "London", "Windsor",
}

// FeedPlaces is searched, in order, against syndicated feed entries.
var FeedPlaces = []string{
	"Sudbury", "North Bay", "Timmins", "Sault Ste. Marie",
	"Toronto", "Ottawa", "Hamilton", "London", "Kingston",
	"Ontario",
}

type place struct {
	name string
	re   *regexp.Regexp
}

// PlaceMatcher returns the first known place name mentioned in a text.
type PlaceMatcher struct {
	places []place
}

// NewPlaceMatcher compiles places in list order. Matching is case-insensitive on word
// boundaries, and a "." in a place name is optional in the text.
func NewPlaceMatcher(places []string) *PlaceMatcher {
	m := &PlaceMatcher{places: make([]place, 0, len(places))}
	for _, name := range places {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		pattern := strings.ReplaceAll(regexp.QuoteMeta(name), `\.`, `\.?`)
		m.places = append(m.places, place{
			name: name,
			re:   regexp.MustCompile(`(?i)\b` + pattern + `\b`),
		})
	}
	return m
}

// Infer returns the canonical spelling of the first place found in text, else fallback.
func (m *PlaceMatcher) Infer(text, fallback string) string {
	for _, p := range m.places {
		if p.re.MatchString(text) {
			return p.name
		}
	}
	return fallback
}
