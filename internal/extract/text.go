package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SummaryLimit caps cleaned feed summaries.
const SummaryLimit = 500

const ellipsis = "..."

// CleanText collapses all whitespace runs (including non-breaking spaces) to single spaces.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// StripTags removes markup and decodes entities. Input that does not parse is returned unchanged.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}

// CleanSummary strips markup, collapses whitespace and caps the result at SummaryLimit runes.
func CleanSummary(s string) string {
	if s == "" {
		return ""
	}
	return Ellipsize(CleanText(StripTags(s)), SummaryLimit-len(ellipsis), SummaryLimit)
}

// Ellipsize keeps the first keep runes and appends "..." when s is longer than limit runes.
func Ellipsize(s string, keep, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if keep > len(r) {
		keep = len(r)
	}
	return string(r[:keep]) + ellipsis
}
