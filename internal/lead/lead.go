// Package lead defines the canonical record every source normalizes into.
package lead

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Source tags which adapter produced a lead.
type Source string

// Known source tags. Facebook and municipal are placeholders with no implementation yet.
const (
	SourceKijiji       Source = "kijiji"
	SourceRSS          Source = "rss"
	SourceGoogleAlerts Source = "google_alerts"
	SourceFacebook     Source = "facebook"
	SourceMunicipal    Source = "municipal"
)

var knownSources = map[Source]struct{}{
	SourceKijiji:       {},
	SourceRSS:          {},
	SourceGoogleAlerts: {},
	SourceFacebook:     {},
	SourceMunicipal:    {},
}

var (
	// ErrMissingURL is returned when a candidate has no usable absolute URL.
	ErrMissingURL = errors.New("lead url is required")
	// ErrMissingTitle is returned when a candidate has an empty title.
	ErrMissingTitle = errors.New("lead title is required")
)

// ParseSource maps a configured source name onto a known tag.
func ParseSource(name string) (Source, error) {
	s := Source(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := knownSources[s]; !ok {
		return "", fmt.Errorf("unknown source %q", name)
	}
	return s, nil
}

// Lead is one discovered opportunity. Two leads are the same entity iff their URLs are equal.
type Lead struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Budget      string `json:"budget,omitempty"`
	PostedTime  string `json:"posted_time,omitempty"`
	Source      Source `json:"source"`
	Content     string `json:"content,omitempty"`
}

// New trims and validates a candidate. The title must be non-empty and the URL absolute.
func New(candidate Lead) (Lead, error) {
	l := candidate
	l.Title = strings.TrimSpace(l.Title)
	l.URL = strings.TrimSpace(l.URL)
	l.Location = strings.TrimSpace(l.Location)

	if l.Title == "" {
		return Lead{}, ErrMissingTitle
	}
	if l.URL == "" {
		return Lead{}, ErrMissingURL
	}
	parsed, err := url.Parse(l.URL)
	if err != nil {
		return Lead{}, fmt.Errorf("parse lead url %q: %w", l.URL, errors.Join(ErrMissingURL, err))
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return Lead{}, fmt.Errorf("lead url %q is not absolute: %w", l.URL, ErrMissingURL)
	}
	if _, ok := knownSources[l.Source]; !ok {
		return Lead{}, fmt.Errorf("unknown source %q", l.Source)
	}
	return l, nil
}

// Fingerprint is the input to the stored content digest.
func (l Lead) Fingerprint() []byte {
	return []byte(l.Title + "|" + l.URL + "|" + l.Location)
}
