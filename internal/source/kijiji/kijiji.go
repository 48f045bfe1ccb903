// Package kijiji searches Kijiji classifieds through a rendering browser session.
package kijiji

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/lead-hunter/internal/extract"
	"github.com/JakeFAU/lead-hunter/internal/lead"
	"github.com/JakeFAU/lead-hunter/internal/policy/ratelimit"
	"github.com/JakeFAU/lead-hunter/internal/source"
)

// PageRenderer renders a URL in a browser and returns its markup.
type PageRenderer interface {
	Render(ctx context.Context, url, waitSelector string) (string, error)
	Close() error
}

// RendererFactory opens a fresh renderer for one Search or Details call.
type RendererFactory func() PageRenderer

// Config holds the search settings for one source.
type Config struct {
	BaseURL        string
	ListingPattern string
	WaitSelector   string
	Locations      []string
	Keywords       []string
	MaxResults     int
	QueryDelay     time.Duration
}

// Source implements source.Source for Kijiji search pages.
type Source struct {
	cfg         Config
	pattern     *regexp.Regexp
	newRenderer RendererFactory
	pauser      ratelimit.Pauser
	logger      *zap.Logger
}

var _ source.Source = (*Source)(nil)

// New validates cfg and builds a Source. pauser may be nil.
func New(cfg Config, newRenderer RendererFactory, pauser ratelimit.Pauser, logger *zap.Logger) (*Source, error) {
	if newRenderer == nil {
		return nil, fmt.Errorf("kijiji renderer factory is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil || cfg.BaseURL == "" {
		return nil, fmt.Errorf("kijiji base url %q is invalid", cfg.BaseURL)
	}
	pattern, err := regexp.Compile(cfg.ListingPattern)
	if err != nil {
		return nil, fmt.Errorf("compile listing pattern: %w", err)
	}
	if pauser == nil {
		pauser = ratelimit.TimerPauser{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		cfg:         cfg,
		pattern:     pattern,
		newRenderer: newRenderer,
		pauser:      pauser,
		logger:      logger.Named("kijiji"),
	}, nil
}

// Kind returns lead.SourceKijiji.
func (s *Source) Kind() lead.Source {
	return lead.SourceKijiji
}

// Search runs every (location, keyword) query in order. A failed query is yielded as a
// *source.QueryError and the search continues. The renderer is opened lazily and closed when
// the sequence ends, however it ends.
func (s *Source) Search(ctx context.Context) iter.Seq2[lead.Lead, error] {
	return func(yield func(lead.Lead, error) bool) {
		renderer := s.newRenderer()
		defer func() {
			if err := renderer.Close(); err != nil {
				s.logger.Warn("close renderer", zap.Error(err))
			}
		}()

		seen := source.NewSeen()
		queries := 0
		for _, location := range s.cfg.Locations {
			for _, keyword := range s.cfg.Keywords {
				if err := ctx.Err(); err != nil {
					yield(lead.Lead{}, fmt.Errorf("kijiji search interrupted: %w", err))
					return
				}
				if queries > 0 {
					s.pauser.Pause(ctx, s.cfg.QueryDelay)
				}
				queries++

				leads, err := s.query(ctx, renderer, keyword, location)
				if err != nil {
					s.logger.Warn("query failed",
						zap.String("keyword", keyword),
						zap.String("location", location),
						zap.Error(err),
					)
					qe := &source.QueryError{Query: keyword + " in " + location, Err: err}
					if !yield(lead.Lead{}, qe) {
						return
					}
					continue
				}
				for _, l := range leads {
					if !seen.MarkIfNew(l.URL) {
						s.logger.Debug("skipping duplicate", zap.String("url", l.URL))
						continue
					}
					if !yield(l, nil) {
						return
					}
				}
			}
		}
	}
}

func (s *Source) query(ctx context.Context, renderer PageRenderer, keyword, location string) ([]lead.Lead, error) {
	searchURL := SearchURL(s.cfg.BaseURL, keyword, location)
	s.logger.Info("searching",
		zap.String("keyword", keyword),
		zap.String("location", location),
		zap.String("url", searchURL),
	)
	html, err := renderer.Render(ctx, searchURL, s.cfg.WaitSelector)
	if err != nil {
		return nil, err
	}
	return extract.ExtractListings(html, extract.ListingOptions{
		BaseURL:  s.cfg.BaseURL,
		Pattern:  s.pattern,
		Location: location,
		Source:   lead.SourceKijiji,
		Max:      s.cfg.MaxResults,
	})
}

// Details renders a single listing page and reads its full description and phone number.
func (s *Source) Details(ctx context.Context, listingURL string) (extract.Details, error) {
	renderer := s.newRenderer()
	defer func() {
		if err := renderer.Close(); err != nil {
			s.logger.Warn("close renderer", zap.Error(err))
		}
	}()
	html, err := renderer.Render(ctx, listingURL, "")
	if err != nil {
		return extract.Details{}, fmt.Errorf("render listing: %w", err)
	}
	return extract.ParseDetails(html)
}

type area struct {
	path string
	code string
}

// areas maps configured location names to Kijiji's search path and location code.
var areas = map[string]area{
	"sudbury":         {path: "sudbury", code: "l9004"},
	"north bay":       {path: "north-bay", code: "l1700027"},
	"timmins":         {path: "timmins", code: "l1700028"},
	"sault ste marie": {path: "sault-ste-marie", code: "l1700026"},
	"ontario":         {path: "ontario", code: "l9004"},
}

// SearchURL builds /b-{path}/{keyword}/k0{code}?dc=true. Unknown locations search province-wide.
func SearchURL(baseURL, keyword, location string) string {
	a, ok := areas[strings.ToLower(strings.TrimSpace(location))]
	if !ok {
		a = areas["ontario"]
	}
	return fmt.Sprintf("%s/b-%s/%s/k0%s?dc=true",
		strings.TrimRight(baseURL, "/"), a.path, url.QueryEscape(keyword), a.code)
}
