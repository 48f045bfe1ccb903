package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeSite(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard http", "http://example.com/path", "example.com"},
		{"standard https", "https://Example.com/path", "example.com"},
		{"no scheme", "example.com/path", "example.com"},
		{"just host", "example.com", "example.com"},
		{"host with port", "example.com:8080", "example.com"},
		{"ip address", "192.168.1.1", "192.168.1.1"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSite(tc.input); got != tc.expected {
				t.Errorf("SanitizeSite(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestRecorderCounters(t *testing.T) {
	t.Parallel()

	r := New()
	r.ObserveFound("rss")
	r.ObserveFound("rss")
	r.ObserveFound("kijiji")
	r.ObserveNew("rss")
	r.ObserveDuplicate("rss")
	r.ObserveNotification(ResultQueued)
	r.ObserveSourceError("kijiji")

	assert.InDelta(t, 2, testutil.ToFloat64(r.leadsFound.WithLabelValues("rss")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.leadsFound.WithLabelValues("kijiji")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.leadsNew.WithLabelValues("rss")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.leadsDuplicate.WithLabelValues("rss")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.notifications.WithLabelValues(ResultQueued)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.sourceErrors.WithLabelValues("kijiji")), 0)
}

func TestRecorderIsolation(t *testing.T) {
	t.Parallel()

	a := New()
	b := New()
	a.ObserveFound("rss")
	assert.InDelta(t, 0, testutil.ToFloat64(b.leadsFound.WithLabelValues("rss")), 0)
}

func TestObserveRun(t *testing.T) {
	t.Parallel()

	r := New()
	finished := time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)
	r.ObserveRun(3*time.Second, finished)
	r.ObserveRateLimitDelay("https://Feeds.Example.com/rss", 500*time.Millisecond)

	assert.InDelta(t, float64(finished.Unix()), testutil.ToFloat64(r.lastRun), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(r.runDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(r.rateLimitDelays))
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	r := New()
	r.ObserveFound("google_alerts")
	path := filepath.Join(t.TempDir(), "leadhunter.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `leadhunter_leads_found_total{source="google_alerts"} 1`)
}

func TestWriteTextfileMissingDir(t *testing.T) {
	t.Parallel()

	r := New()
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "leadhunter.prom"))
	require.Error(t, err)
}
