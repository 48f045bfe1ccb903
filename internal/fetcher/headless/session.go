// Package headless owns the browser session used by rendering-dependent sources.
package headless

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

var (
	// ErrSessionClosed is returned by Render after Close.
	ErrSessionClosed = errors.New("headless session closed")
	// ErrUnexpectedStatus is returned when the navigated document is not a 200.
	ErrUnexpectedStatus = errors.New("unexpected document status")
)

const (
	defaultNavigationTimeout = 30 * time.Second
	defaultSelectorTimeout   = 10 * time.Second
	defaultViewportWidth     = 1920
	defaultViewportHeight    = 1080
	closeTimeout             = 10 * time.Second
)

// Config controls the browser session.
type Config struct {
	Headless          bool
	UserAgent         string
	Locale            string
	Timezone          string
	ViewportWidth     int
	ViewportHeight    int
	NavigationTimeout time.Duration
	SelectorTimeout   time.Duration
	// BlockedURLs are wildcard patterns ("*.png") the browser refuses to load.
	BlockedURLs []string
}

func (c Config) withDefaults() Config {
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = defaultNavigationTimeout
	}
	if c.SelectorTimeout <= 0 {
		c.SelectorTimeout = defaultSelectorTimeout
	}
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = defaultViewportWidth
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = defaultViewportHeight
	}
	return c
}

type state int

const (
	stateUninitialized state = iota
	stateActive
	stateClosed
)

// Session is a lazily started browser with one isolated browsing context. Each Render opens
// a fresh tab inside that context and closes it before returning. A Session is owned by a
// single source run and is not safe for concurrent Render calls.
type Session struct {
	cfg    Config
	logger *zap.Logger

	mu            sync.Mutex
	state         state
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	isolatedCtx   context.Context
	isolateCancel context.CancelFunc
}

// NewSession creates a session. No browser is started until the first Render.
func NewSession(cfg Config, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{cfg: cfg.withDefaults(), logger: logger.Named("headless")}
}

// Render navigates a new tab to url, waits for waitSelector (or body when empty) and returns
// the rendered document markup.
func (s *Session) Render(ctx context.Context, url, waitSelector string) (string, error) {
	isolated, err := s.open()
	if err != nil {
		return "", err
	}

	tabCtx, closeTab := chromedp.NewContext(isolated)
	defer closeTab()
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	if err := chromedp.Run(tabCtx, s.setupAction()); err != nil {
		return "", fmt.Errorf("prepare tab: %w", err)
	}

	navCtx, navCancel := context.WithTimeout(tabCtx, s.cfg.NavigationTimeout)
	defer navCancel()
	resp, err := chromedp.RunResponse(navCtx, chromedp.Navigate(url))
	if err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := checkStatus(resp); err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}

	if waitSelector == "" {
		waitSelector = "body"
	}
	var html string
	selCtx, selCancel := context.WithTimeout(tabCtx, s.cfg.SelectorTimeout)
	defer selCancel()
	if err := chromedp.Run(selCtx,
		chromedp.WaitReady(waitSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("wait for %q on %s: %w", waitSelector, url, err)
	}
	s.logger.Debug("page rendered", zap.String("url", url), zap.Int("bytes", len(html)))
	return html, nil
}

// Close releases the browser. It is safe to call more than once and before any Render.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateActive {
		s.state = stateClosed
		return nil
	}
	s.state = stateClosed

	s.isolateCancel()
	cctx, cancel := context.WithTimeout(s.browserCtx, closeTimeout)
	defer cancel()
	err := chromedp.Cancel(cctx)
	s.browserCancel()
	s.allocCancel()
	s.logger.Info("browser closed")
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

func (s *Session) open() (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateClosed:
		return nil, ErrSessionClosed
	case stateActive:
		return s.isolatedCtx, nil
	}

	s.logger.Info("starting browser", zap.Bool("headless", s.cfg.Headless))
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), s.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	isolatedCtx, isolateCancel := chromedp.NewContext(browserCtx, chromedp.WithNewBrowserContext())
	if err := chromedp.Run(isolatedCtx); err != nil {
		isolateCancel()
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("create browser context: %w", err)
	}

	s.allocCancel = allocCancel
	s.browserCtx, s.browserCancel = browserCtx, browserCancel
	s.isolatedCtx, s.isolateCancel = isolatedCtx, isolateCancel
	s.state = stateActive
	return isolatedCtx, nil
}

func (s *Session) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
		chromedp.WindowSize(s.cfg.ViewportWidth, s.cfg.ViewportHeight),
	)
	if s.cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if s.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(s.cfg.UserAgent))
	}
	return opts
}

// setupAction applies emulation and resource blocking to a tab before it navigates.
func (s *Session) setupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if len(s.cfg.BlockedURLs) > 0 {
			if err := network.SetBlockedURLs(s.cfg.BlockedURLs).Do(ctx); err != nil {
				return fmt.Errorf("block resources: %w", err)
			}
		}
		err := emulation.SetDeviceMetricsOverride(int64(s.cfg.ViewportWidth), int64(s.cfg.ViewportHeight), 1, false).Do(ctx)
		if err != nil {
			return fmt.Errorf("set viewport: %w", err)
		}
		if s.cfg.UserAgent != "" {
			ua := emulation.SetUserAgentOverride(s.cfg.UserAgent)
			if s.cfg.Locale != "" {
				ua = ua.WithAcceptLanguage(s.cfg.Locale)
			}
			if err := ua.Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		if s.cfg.Locale != "" {
			if err := emulation.SetLocaleOverride().WithLocale(s.cfg.Locale).Do(ctx); err != nil {
				return fmt.Errorf("set locale: %w", err)
			}
		}
		if s.cfg.Timezone != "" {
			if err := emulation.SetTimezoneOverride(s.cfg.Timezone).Do(ctx); err != nil {
				return fmt.Errorf("set timezone: %w", err)
			}
		}
		return nil
	})
}

func checkStatus(resp *network.Response) error {
	if resp == nil {
		return fmt.Errorf("no response: %w", ErrUnexpectedStatus)
	}
	if resp.Status != http.StatusOK {
		return fmt.Errorf("status %d: %w", resp.Status, ErrUnexpectedStatus)
	}
	return nil
}
