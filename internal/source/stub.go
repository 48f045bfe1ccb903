package source

import (
	"context"
	"iter"

	"go.uber.org/zap"

	"github.com/JakeFAU/lead-hunter/internal/lead"
)

// Stub is a placeholder for a source that has no implementation yet. It always yields nothing.
type Stub struct {
	kind   lead.Source
	logger *zap.Logger
}

// NewStub creates a placeholder source for kind.
func NewStub(kind lead.Source, logger *zap.Logger) *Stub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stub{kind: kind, logger: logger.Named(string(kind))}
}

// Kind returns the source tag.
func (s *Stub) Kind() lead.Source {
	return s.kind
}

// Search returns an empty sequence.
func (s *Stub) Search(context.Context) iter.Seq2[lead.Lead, error] {
	return func(func(lead.Lead, error) bool) {
		s.logger.Info("source not implemented yet, skipping")
	}
}
