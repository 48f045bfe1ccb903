package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JakeFAU/lead-hunter/internal/lead"
)

// TestStubYieldsNothing checks placeholder sources produce an empty sequence.
func TestStubYieldsNothing(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	s := NewStub(lead.SourceFacebook, zap.New(core))
	assert.Equal(t, lead.SourceFacebook, s.Kind())

	count := 0
	for range s.Search(context.Background()) {
		count++
	}
	assert.Zero(t, count)
	assert.Equal(t, 1, logs.FilterMessage("source not implemented yet, skipping").Len())
}

func TestSeenMarkIfNew(t *testing.T) {
	t.Parallel()

	s := NewSeen()
	assert.True(t, s.MarkIfNew("https://example.test/a"))
	assert.False(t, s.MarkIfNew("https://example.test/a"))
	assert.True(t, s.MarkIfNew("https://example.test/b"))
	assert.False(t, s.MarkIfNew(""))
}
