// Package metrics exposes Prometheus collectors for lead-hunter runs.
//
// Collectors live on a private registry owned by a Recorder so a one-shot run can flush them
// to a node_exporter textfile and tests can inspect them without global state.
package metrics

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Notification results recorded under leadhunter_notifications_total.
const (
	ResultQueued  = "queued"
	ResultSkipped = "skipped"
	ResultFailed  = "failed"
	ResultDryRun  = "dry_run"
	ResultSummary = "summary"
)

// Recorder owns the registry and every lead-hunter collector.
type Recorder struct {
	registry *prometheus.Registry

	leadsFound      *prometheus.CounterVec
	leadsNew        *prometheus.CounterVec
	leadsDuplicate  *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	sourceErrors    *prometheus.CounterVec
	runDuration     prometheus.Histogram
	lastRun         prometheus.Gauge
	rateLimitDelays *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		leadsFound: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadhunter_leads_found_total",
				Help: "Candidates yielded by sources, labeled by source.",
			},
			[]string{"source"},
		),
		leadsNew: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadhunter_leads_new_total",
				Help: "Candidates accepted as new by the dedup store, labeled by source.",
			},
			[]string{"source"},
		),
		leadsDuplicate: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadhunter_leads_duplicate_total",
				Help: "Candidates rejected as already seen, labeled by source.",
			},
			[]string{"source"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadhunter_notifications_total",
				Help: "Notification attempts, labeled by result.",
			},
			[]string{"result"},
		),
		sourceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadhunter_source_errors_total",
				Help: "Failed source queries and aborted sources, labeled by source.",
			},
			[]string{"source"},
		),
		runDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "leadhunter_run_duration_seconds",
				Help:    "Histogram of run durations.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		),
		lastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "leadhunter_last_run_timestamp_seconds",
				Help: "Unix time the last run finished.",
			},
		),
		rateLimitDelays: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leadhunter_rate_limit_delay_seconds",
				Help:    "Histogram of rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"host"},
		),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveFound counts a candidate yielded by source.
func (r *Recorder) ObserveFound(source string) {
	r.leadsFound.WithLabelValues(source).Inc()
}

// ObserveNew counts a candidate accepted as new.
func (r *Recorder) ObserveNew(source string) {
	r.leadsNew.WithLabelValues(source).Inc()
}

// ObserveDuplicate counts a candidate that was already seen.
func (r *Recorder) ObserveDuplicate(source string) {
	r.leadsDuplicate.WithLabelValues(source).Inc()
}

// ObserveNotification counts one notification outcome.
func (r *Recorder) ObserveNotification(result string) {
	r.notifications.WithLabelValues(result).Inc()
}

// ObserveSourceError counts a source that failed.
func (r *Recorder) ObserveSourceError(source string) {
	r.sourceErrors.WithLabelValues(source).Inc()
}

// ObserveRun records a finished run.
func (r *Recorder) ObserveRun(duration time.Duration, finished time.Time) {
	r.runDuration.Observe(duration.Seconds())
	r.lastRun.Set(float64(finished.Unix()))
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func (r *Recorder) ObserveRateLimitDelay(host string, d time.Duration) {
	r.rateLimitDelays.WithLabelValues(SanitizeSite(host)).Observe(d.Seconds())
}

// WriteTextfile writes the registry in the text exposition format for the node_exporter
// textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}
