// Package source defines the capability every lead producer implements.
//
// A Source yields candidate leads lazily for one run. A failure scoped to a single query or
// feed is yielded as a *QueryError and the source moves on to its next query. Any other error
// yielded through the sequence means the source as a whole could not continue.
package source

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/JakeFAU/lead-hunter/internal/lead"
)

// Source produces candidate leads. Each call to Search starts a fresh, non-restartable sequence
// that never yields the same URL twice.
type Source interface {
	Kind() lead.Source
	Search(ctx context.Context) iter.Seq2[lead.Lead, error]
}

// QueryError reports one failed query or feed. The source keeps going after yielding it.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsQueryError reports whether err is scoped to a single query.
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}

// Seen tracks URLs already yielded within one Search.
type Seen struct {
	urls map[string]struct{}
}

// NewSeen returns an empty tracker.
func NewSeen() *Seen {
	return &Seen{urls: make(map[string]struct{})}
}

// MarkIfNew stores the URL if it has not been seen before and returns true.
func (s *Seen) MarkIfNew(url string) bool {
	if url == "" {
		return false
	}
	if _, ok := s.urls[url]; ok {
		return false
	}
	s.urls[url] = struct{}{}
	return true
}
