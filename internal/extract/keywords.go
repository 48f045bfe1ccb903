package extract

import (
	"regexp"
	"strings"
)

// DefaultKeywords is used by the feed source when neither the feed nor the search section lists keywords.
var DefaultKeywords = []string{
	"permit",
	"BCIN",
	"architect",
	"renovation",
	"basement apartment",
	"deck",
	"garage",
	"addition",
	"construction",
	"building permit",
	"home improvement",
	"contractor",
	"blueprint",
	"drawings",
}

// Matcher is a compiled case-insensitive keyword filter.
// A matcher built from no keywords accepts everything.
type Matcher struct {
	re *regexp.Regexp
}

// NewMatcher compiles keywords into one alternation. Blank keywords are ignored.
func NewMatcher(keywords []string) *Matcher {
	parts := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		parts = append(parts, regexp.QuoteMeta(kw))
	}
	if len(parts) == 0 {
		return &Matcher{}
	}
	return &Matcher{re: regexp.MustCompile(`(?i)` + strings.Join(parts, "|"))}
}

// Match reports whether text contains any keyword.
func (m *Matcher) Match(text string) bool {
	if m == nil || m.re == nil {
		return true
	}
	return m.re.MatchString(text)
}
