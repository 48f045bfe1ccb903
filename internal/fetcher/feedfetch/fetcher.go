// Package feedfetch downloads feed documents with a Colly collector.
package feedfetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// ErrStatus marks a feed response outside the 2xx range.
var ErrStatus = errors.New("unexpected feed status")

// DefaultAccept is sent when Config.Accept is empty.
const DefaultAccept = "application/rss+xml, application/atom+xml, application/xml, text/xml, */*"

const defaultTimeout = 30 * time.Second

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Accept    string
	Timeout   time.Duration
}

// Waiter gates requests per host.
type Waiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// Fetcher retrieves raw feed bodies.
type Fetcher struct {
	cfg           Config
	limiter       Waiter
	logger        *zap.Logger
	baseCollector *colly.Collector
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher. limiter may be nil.
func New(cfg Config, limiter Waiter, logger *zap.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Accept == "" {
		cfg.Accept = DefaultAccept
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := colly.NewCollector(colly.Async(false), colly.AllowURLRevisit(), colly.ParseHTTPErrorResponse())
	c.WithTransport(newHTTPTransport())
	c.SetRequestTimeout(cfg.Timeout)
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	return &Fetcher{
		cfg:           cfg,
		limiter:       limiter,
		logger:        logger.Named("feedfetch"),
		baseCollector: c,
	}
}

// Fetch executes a single GET and returns the body of a 2xx response.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, url); err != nil {
			return nil, err
		}
	}

	var (
		body     []byte
		fetchErr error
	)
	collector := f.baseCollector.Clone()
	collector.Context = ctx
	f.configureCollectorHooks(collector, &body, &fetchErr)

	start := time.Now()
	if err := f.runCollector(ctx, collector, url, &fetchErr); err != nil {
		return nil, err
	}
	f.logger.Debug("feed fetched",
		zap.String("url", url),
		zap.Int("bytes", len(body)),
		zap.Duration("took", time.Since(start)),
	)
	return body, nil
}

func (f *Fetcher) configureCollectorHooks(hooks collectorHooks, body *[]byte, fetchErr *error) {
	hooks.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", f.cfg.Accept)
	})

	// Error statuses reach OnResponse because the collector parses them; OnError only sees
	// transport failures.
	hooks.OnResponse(func(r *colly.Response) {
		if r.StatusCode < http.StatusOK || r.StatusCode >= http.StatusMultipleChoices {
			*fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, ErrStatus)
			return
		}
		*body = append([]byte(nil), r.Body...)
	})

	hooks.OnError(func(_ *colly.Response, err error) {
		*fetchErr = err
	})
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("feed fetch canceled: %w", ctx.Err())
	case err := <-done:
		if *fetchErr != nil {
			return fmt.Errorf("fetch %s: %w", url, *fetchErr)
		}
		if err != nil {
			return fmt.Errorf("fetch %s: %w", url, err)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
