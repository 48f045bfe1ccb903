// Package hunter runs every enabled source once, filters candidates through the dedup store and
// routes new leads to the notifier.
package hunter

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/lead-hunter/internal/lead"
	"github.com/JakeFAU/lead-hunter/internal/metrics"
	"github.com/JakeFAU/lead-hunter/internal/notify"
	"github.com/JakeFAU/lead-hunter/internal/source"
)

// ErrDegraded is returned by Stats.Err when at least one source failed.
var ErrDegraded = errors.New("run finished with source errors")

// Status summarizes a run outcome.
type Status string

const (
	// StatusClean means every source completed.
	StatusClean Status = "clean"
	// StatusDegraded means at least one source failed; the stats still cover everything else.
	StatusDegraded Status = "degraded"
)

// Stats aggregates one run.
type Stats struct {
	TotalFound int
	NewLeads   int
	Duplicates int
	Notified   int
	Errors     int
	Sources    []lead.Source
	Duration   time.Duration
}

// Status reports clean iff no source failed.
func (s Stats) Status() Status {
	if s.Errors == 0 {
		return StatusClean
	}
	return StatusDegraded
}

// Err returns ErrDegraded for a degraded run and nil otherwise.
func (s Stats) Err() error {
	if s.Errors > 0 {
		return ErrDegraded
	}
	return nil
}

// DedupStore is the subset of the persistent store the orchestrator needs.
type DedupStore interface {
	IsNew(url string) bool
	Add(l lead.Lead) (bool, error)
}

// Notifier delivers lead and summary messages.
type Notifier interface {
	SendLead(ctx context.Context, l lead.Lead) (bool, error)
	SendSummary(ctx context.Context, s notify.Summary) error
}

// Recorder receives run metrics.
type Recorder interface {
	ObserveFound(source string)
	ObserveNew(source string)
	ObserveDuplicate(source string)
	ObserveNotification(result string)
	ObserveSourceError(source string)
	ObserveRun(duration time.Duration, finished time.Time)
	WriteTextfile(path string) error
}

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// Config controls run behavior.
type Config struct {
	DryRun          bool
	MetricsTextfile string
}

// Hunter orchestrates one run over a fixed, ordered set of sources.
type Hunter struct {
	sources  []source.Source
	store    DedupStore
	notifier Notifier
	recorder Recorder
	clock    Clock
	cfg      Config
	logger   *zap.Logger
}

// New constructs a Hunter. Sources run in the order given.
func New(
	sources []source.Source,
	store DedupStore,
	notifier Notifier,
	recorder Recorder,
	clock Clock,
	cfg Config,
	logger *zap.Logger,
) *Hunter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hunter{
		sources:  sources,
		store:    store,
		notifier: notifier,
		recorder: recorder,
		clock:    clock,
		cfg:      cfg,
		logger:   logger.Named("hunter"),
	}
}

// Run executes one pass over every source and returns the aggregated stats. It never fails as a
// whole: source failures are counted and reflected in Stats.Status.
func (h *Hunter) Run(ctx context.Context) Stats {
	start := h.clock.Now()
	h.logger.Info("lead hunter starting", zap.Bool("dry_run", h.cfg.DryRun), zap.Int("sources", len(h.sources)))

	stats := Stats{Sources: make([]lead.Source, 0, len(h.sources))}
	for _, src := range h.sources {
		h.runSource(ctx, src, &stats)
	}

	if stats.NewLeads > 0 && !h.cfg.DryRun {
		summary := notify.Summary{
			TotalFound: stats.TotalFound,
			NewLeads:   stats.NewLeads,
			Duplicates: stats.Duplicates,
			Notified:   stats.Notified,
			Sources:    stats.Sources,
		}
		if err := h.notifier.SendSummary(ctx, summary); err != nil {
			h.logger.Error("summary notification failed", zap.Error(err))
			h.observeNotification(metrics.ResultFailed)
		} else {
			h.observeNotification(metrics.ResultSummary)
		}
	}

	finished := h.clock.Now()
	stats.Duration = finished.Sub(start)
	h.logSummary(stats)
	h.recordRun(stats, finished)
	return stats
}

func (h *Hunter) runSource(ctx context.Context, src source.Source, stats *Stats) {
	kind := src.Kind()
	stats.Sources = append(stats.Sources, kind)
	logger := h.logger.With(zap.String("source", string(kind)))
	logger.Info("running source")

	defer func() {
		if r := recover(); r != nil {
			stats.Errors++
			logger.Error("source panicked", zap.Any("panic", r), zap.Stack("stack"))
			h.observeSourceError(kind)
		}
	}()

	for candidate, err := range src.Search(ctx) {
		if err != nil {
			stats.Errors++
			h.observeSourceError(kind)
			if source.IsQueryError(err) {
				logger.Warn("source query failed", zap.Error(err))
				continue
			}
			logger.Error("source failed", zap.Error(err))
			return
		}
		h.handleCandidate(ctx, candidate, stats, logger)
	}
}

func (h *Hunter) observeSourceError(kind lead.Source) {
	if h.recorder != nil {
		h.recorder.ObserveSourceError(string(kind))
	}
}

func (h *Hunter) handleCandidate(ctx context.Context, l lead.Lead, stats *Stats, logger *zap.Logger) {
	stats.TotalFound++
	src := string(l.Source)
	if h.recorder != nil {
		h.recorder.ObserveFound(src)
	}

	if !h.store.IsNew(l.URL) {
		stats.Duplicates++
		logger.Debug("duplicate lead", zap.String("url", l.URL))
		if h.recorder != nil {
			h.recorder.ObserveDuplicate(src)
		}
		return
	}

	stats.NewLeads++
	logger.Info("new lead", zap.String("title", l.Title), zap.String("url", l.URL))
	if h.recorder != nil {
		h.recorder.ObserveNew(src)
	}

	if h.cfg.DryRun {
		h.observeNotification(metrics.ResultDryRun)
	} else {
		h.notify(ctx, l, stats, logger)
	}

	if _, err := h.store.Add(l); err != nil {
		logger.Error("persist lead failed", zap.String("url", l.URL), zap.Error(err))
	}
}

func (h *Hunter) notify(ctx context.Context, l lead.Lead, stats *Stats, logger *zap.Logger) {
	sent, err := h.notifier.SendLead(ctx, l)
	switch {
	case err != nil:
		logger.Error("lead notification failed", zap.String("url", l.URL), zap.Error(err))
		h.observeNotification(metrics.ResultFailed)
	case sent:
		stats.Notified++
		h.observeNotification(metrics.ResultQueued)
	default:
		h.observeNotification(metrics.ResultSkipped)
	}
}

func (h *Hunter) observeNotification(result string) {
	if h.recorder != nil {
		h.recorder.ObserveNotification(result)
	}
}

func (h *Hunter) logSummary(stats Stats) {
	sources := make([]string, 0, len(stats.Sources))
	for _, s := range stats.Sources {
		sources = append(sources, string(s))
	}
	h.logger.Info("lead hunter summary",
		zap.String("status", string(stats.Status())),
		zap.Int("total_found", stats.TotalFound),
		zap.Int("new_leads", stats.NewLeads),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("notified", stats.Notified),
		zap.Int("errors", stats.Errors),
		zap.Strings("sources", sources),
		zap.Duration("duration", stats.Duration),
	)
}

func (h *Hunter) recordRun(stats Stats, finished time.Time) {
	if h.recorder == nil {
		return
	}
	h.recorder.ObserveRun(stats.Duration, finished)
	if h.cfg.MetricsTextfile == "" {
		return
	}
	if err := h.recorder.WriteTextfile(h.cfg.MetricsTextfile); err != nil {
		h.logger.Warn("metrics textfile not written", zap.String("path", h.cfg.MetricsTextfile), zap.Error(err))
	}
}
