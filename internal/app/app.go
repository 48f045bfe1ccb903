// Package app initializes and holds long-lived application services, acting as a dependency
// injection container for the CLI commands.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/lead-hunter/internal/clock/system"
	"github.com/JakeFAU/lead-hunter/internal/config"
	"github.com/JakeFAU/lead-hunter/internal/dedup"
	"github.com/JakeFAU/lead-hunter/internal/fetcher/feedfetch"
	"github.com/JakeFAU/lead-hunter/internal/fetcher/headless"
	"github.com/JakeFAU/lead-hunter/internal/hash/sha256"
	"github.com/JakeFAU/lead-hunter/internal/hunter"
	"github.com/JakeFAU/lead-hunter/internal/id/uuid"
	"github.com/JakeFAU/lead-hunter/internal/lead"
	"github.com/JakeFAU/lead-hunter/internal/metrics"
	"github.com/JakeFAU/lead-hunter/internal/notify"
	"github.com/JakeFAU/lead-hunter/internal/policy/ratelimit"
	"github.com/JakeFAU/lead-hunter/internal/queue"
	queuefile "github.com/JakeFAU/lead-hunter/internal/queue/file"
	"github.com/JakeFAU/lead-hunter/internal/source"
	"github.com/JakeFAU/lead-hunter/internal/source/feed"
	"github.com/JakeFAU/lead-hunter/internal/source/kijiji"
)

// Options carries command-line switches that change wiring.
type Options struct {
	DryRun bool
}

// App holds the services one run needs. It owns the dedup store lock until Close.
type App struct {
	logger   *zap.Logger
	store    *dedup.Store
	queue    queue.Provider
	recorder *metrics.Recorder
	hunter   *hunter.Hunter
}

// GetLogger returns the shared zap logger.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetHunter returns the orchestrator.
func (a *App) GetHunter() *hunter.Hunter {
	return a.hunter
}

// GetRecorder returns the metrics recorder.
func (a *App) GetRecorder() *metrics.Recorder {
	return a.recorder
}

// NewApp opens the dedup store, prepares the notification queue and builds every enabled source.
// It fails fast when the store is locked by another run or a source cannot be configured.
func NewApp(cfg config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("initializing application services", zap.Bool("dry_run", opts.DryRun))

	clock := system.New()
	store, err := dedup.Open(dedup.Options{
		Path:      cfg.Storage.Path,
		Retention: cfg.DedupRetention(),
		Clock:     clock,
		Hasher:    sha256.New(),
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open dedup store: %w", err)
	}

	var q queue.Provider
	if opts.DryRun {
		logger.Info("dry run: using no-op notification queue")
		q = &queue.NoOpProvider{}
	} else {
		fq, qErr := queuefile.New(cfg.Notifications.QueueDir, clock, uuid.New(), logger)
		if qErr != nil {
			_ = store.Close()
			return nil, fmt.Errorf("open notification queue: %w", qErr)
		}
		q = fq
	}

	recorder := metrics.New()
	limiter := ratelimit.New(ratelimit.Config{
		RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
		Burst:             cfg.HTTP.Burst,
		Observer:          recorder,
	})
	fetcher := feedfetch.New(feedfetch.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTP.Timeout,
	}, limiter, logger)

	sources, err := BuildSources(cfg, fetcher, logger)
	if err != nil {
		_ = q.Close()
		_ = store.Close()
		return nil, err
	}

	notifier := notify.New(notify.Config{
		Enabled:   cfg.Notifications.Enabled,
		Channel:   cfg.Notifications.Channel,
		Recipient: cfg.Notifications.Recipient,
	}, q, logger)

	h := hunter.New(sources, store, notifier, recorder, clock, hunter.Config{
		DryRun:          opts.DryRun,
		MetricsTextfile: cfg.Metrics.Textfile,
	}, logger)

	logger.Info("application services initialized", zap.Int("sources", len(sources)))
	return &App{
		logger:   logger,
		store:    store,
		queue:    q,
		recorder: recorder,
		hunter:   h,
	}, nil
}

// BuildSources creates the enabled sources in configured order.
func BuildSources(cfg config.Config, fetcher feed.Fetcher, logger *zap.Logger) ([]source.Source, error) {
	enabled := cfg.EnabledSources()
	out := make([]source.Source, 0, len(enabled))
	for _, kind := range enabled {
		switch kind {
		case lead.SourceKijiji:
			k, err := NewKijiji(cfg, logger)
			if err != nil {
				return nil, err
			}
			out = append(out, k)
		case lead.SourceRSS:
			out = append(out, feed.NewRSS(feed.Config{
				Feeds:           cfg.RSS.Feeds,
				Keywords:        cfg.RSSKeywords(),
				MaxEntries:      cfg.RSS.MaxEntriesPerFeed,
				DefaultLocation: cfg.RSS.DefaultLocation,
			}, fetcher, logger))
		case lead.SourceGoogleAlerts:
			out = append(out, feed.NewAlerts(feed.Config{
				Enabled:         cfg.GoogleAlerts.Enabled,
				Feeds:           cfg.GoogleAlerts.Feeds,
				Keywords:        cfg.GoogleAlerts.Keywords,
				MaxEntries:      cfg.GoogleAlerts.MaxEntriesPerFeed,
				DefaultLocation: cfg.GoogleAlerts.DefaultLocation,
			}, fetcher, logger))
		default:
			out = append(out, source.NewStub(kind, logger))
		}
	}
	return out, nil
}

// NewKijiji builds the rendered classifieds source. Each Search or Details call gets its own
// browser session.
func NewKijiji(cfg config.Config, logger *zap.Logger) (*kijiji.Source, error) {
	sessionCfg := headless.Config{
		Headless:          cfg.Kijiji.Headless,
		UserAgent:         cfg.Kijiji.UserAgent,
		Locale:            cfg.Kijiji.Locale,
		Timezone:          cfg.Kijiji.Timezone,
		ViewportWidth:     cfg.Kijiji.ViewportWidth,
		ViewportHeight:    cfg.Kijiji.ViewportHeight,
		NavigationTimeout: cfg.Kijiji.NavigationTimeout,
		SelectorTimeout:   cfg.Kijiji.SelectorTimeout,
		BlockedURLs:       cfg.Kijiji.BlockedResources,
	}
	k, err := kijiji.New(kijiji.Config{
		BaseURL:        cfg.Kijiji.BaseURL,
		ListingPattern: cfg.Kijiji.ListingPattern,
		WaitSelector:   cfg.Kijiji.WaitSelector,
		Locations:      cfg.Search.Locations,
		Keywords:       cfg.Search.Keywords,
		MaxResults:     cfg.Search.MaxResultsPerQuery,
		QueryDelay:     cfg.Kijiji.QueryDelay,
	}, func() kijiji.PageRenderer {
		return headless.NewSession(sessionCfg, logger)
	}, ratelimit.TimerPauser{}, logger)
	if err != nil {
		return nil, fmt.Errorf("build kijiji source: %w", err)
	}
	return k, nil
}

// Close gracefully shuts down all services in the App container.
// It is called by a Cobra hook after the command finishes execution.
func (a *App) Close() {
	a.GetLogger().Info("shutting down application services")
	if err := a.queue.Close(); err != nil {
		a.GetLogger().Warn("error closing notification queue", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.GetLogger().Warn("error closing dedup store", zap.Error(err))
	}
}
