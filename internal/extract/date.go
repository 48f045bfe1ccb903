package extract

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// NormalizeDate renders a parseable date as RFC 3339. Unparseable input is returned as-is
// and blank input yields "".
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return raw
	}
	return t.Format(time.RFC3339)
}

// FormatTime renders t as RFC 3339, or "" when t is nil or zero.
func FormatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
