// Package feed turns RSS and Atom feeds into leads. The same implementation backs the
// syndicated-feed source and the alert-feed source; they differ only in defaults.
package feed

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/JakeFAU/lead-hunter/internal/extract"
	"github.com/JakeFAU/lead-hunter/internal/lead"
	"github.com/JakeFAU/lead-hunter/internal/source"
)

const defaultMaxEntries = 50

// Fetcher downloads a feed document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Config holds the settings for one feed source.
type Config struct {
	Enabled         bool
	Feeds           []string
	Keywords        []string
	MaxEntries      int
	DefaultLocation string
}

// Source implements source.Source over a list of feeds.
type Source struct {
	kind    lead.Source
	cfg     Config
	matcher *extract.Matcher
	places  *extract.PlaceMatcher
	fetcher Fetcher
	parser  *gofeed.Parser
	logger  *zap.Logger
}

var _ source.Source = (*Source)(nil)

// NewRSS builds the syndicated-feed source, which is always enabled. With no keywords it
// filters on extract.DefaultKeywords.
func NewRSS(cfg Config, fetcher Fetcher, logger *zap.Logger) *Source {
	cfg.Enabled = true
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = extract.DefaultKeywords
	}
	if cfg.DefaultLocation == "" {
		cfg.DefaultLocation = "Unknown"
	}
	return newSource(lead.SourceRSS, cfg, extract.FeedPlaces, fetcher, logger)
}

// NewAlerts builds the alert-feed source. Alerts are already topical, so with no keywords
// every entry is accepted.
func NewAlerts(cfg Config, fetcher Fetcher, logger *zap.Logger) *Source {
	if cfg.DefaultLocation == "" {
		cfg.DefaultLocation = "Ontario"
	}
	return newSource(lead.SourceGoogleAlerts, cfg, extract.AlertPlaces, fetcher, logger)
}

func newSource(kind lead.Source, cfg Config, places []string, fetcher Fetcher, logger *zap.Logger) *Source {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = defaultMaxEntries
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		kind:    kind,
		cfg:     cfg,
		matcher: extract.NewMatcher(cfg.Keywords),
		places:  extract.NewPlaceMatcher(places),
		fetcher: fetcher,
		parser:  gofeed.NewParser(),
		logger:  logger.Named(string(kind)),
	}
}

// Kind returns the source tag.
func (s *Source) Kind() lead.Source {
	return s.kind
}

// Search polls each configured feed in order. A feed that cannot be fetched or parsed is
// yielded as a *source.QueryError and the next feed is polled.
func (s *Source) Search(ctx context.Context) iter.Seq2[lead.Lead, error] {
	return func(yield func(lead.Lead, error) bool) {
		if !s.cfg.Enabled {
			s.logger.Info("source disabled")
			return
		}
		feeds := activeFeeds(s.cfg.Feeds)
		if len(feeds) == 0 {
			s.logger.Warn("no feeds configured")
			return
		}

		seen := source.NewSeen()
		for _, feedURL := range feeds {
			if err := ctx.Err(); err != nil {
				yield(lead.Lead{}, fmt.Errorf("%s search interrupted: %w", s.kind, err))
				return
			}
			leads, err := s.poll(ctx, feedURL)
			if err != nil {
				s.logger.Warn("feed failed", zap.String("feed", feedURL), zap.Error(err))
				if !yield(lead.Lead{}, &source.QueryError{Query: feedURL, Err: err}) {
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

func (s *Source) poll(ctx context.Context, feedURL string) ([]lead.Lead, error) {
	s.logger.Info("polling feed", zap.String("feed", feedURL))
	body, err := s.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	parsed, err := s.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := parsed.Items
	if len(items) > s.cfg.MaxEntries {
		items = items[:s.cfg.MaxEntries]
	}
	leads := make([]lead.Lead, 0, len(items))
	for _, item := range items {
		l, ok := s.toLead(item)
		if !ok {
			continue
		}
		leads = append(leads, l)
	}
	s.logger.Info("feed parsed",
		zap.String("feed", feedURL),
		zap.String("title", parsed.Title),
		zap.Int("entries", len(items)),
		zap.Int("matched", len(leads)),
	)
	return leads, nil
}

func (s *Source) toLead(item *gofeed.Item) (lead.Lead, bool) {
	if item == nil {
		return lead.Lead{}, false
	}
	title := extract.CleanText(extract.StripTags(item.Title))
	link := itemLink(item)
	if title == "" || link == "" {
		s.logger.Debug("entry missing title or link", zap.String("guid", item.GUID))
		return lead.Lead{}, false
	}

	summary := extract.CleanSummary(item.Description)
	text := title + " " + summary
	if !s.matcher.Match(text) {
		s.logger.Debug("entry does not match keywords", zap.String("title", title))
		return lead.Lead{}, false
	}

	content := item.Content
	if content == "" {
		content = item.Description
	}

	l, err := lead.New(lead.Lead{
		Title:       title,
		URL:         link,
		Location:    s.places.Infer(text, s.cfg.DefaultLocation),
		Description: summary,
		PostedTime:  extract.NormalizeDate(itemDate(item)),
		Source:      s.kind,
		Content:     extract.CleanSummary(content),
	})
	if err != nil {
		s.logger.Debug("entry rejected", zap.String("title", title), zap.Error(err))
		return lead.Lead{}, false
	}
	return l, true
}

// itemLink prefers the explicit link and falls back to a GUID that looks like a URL.
func itemLink(item *gofeed.Item) string {
	if link := strings.TrimSpace(item.Link); link != "" {
		return link
	}
	if guid := strings.TrimSpace(item.GUID); strings.HasPrefix(guid, "http") {
		return guid
	}
	return ""
}

// itemDate returns the first non-empty raw date among published, updated and dc:date.
func itemDate(item *gofeed.Item) string {
	candidates := []string{item.Published, item.Updated}
	if item.DublinCoreExt != nil {
		candidates = append(candidates, item.DublinCoreExt.Date...)
	}
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return ""
}

// activeFeeds drops blank and commented-out entries.
func activeFeeds(feeds []string) []string {
	out := make([]string, 0, len(feeds))
	for _, f := range feeds {
		f = strings.TrimSpace(f)
		if f == "" || strings.HasPrefix(f, "#") {
			continue
		}
		out = append(out, f)
	}
	return out
}
