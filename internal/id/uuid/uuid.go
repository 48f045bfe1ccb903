// Package uuid provides ID generation helpers.
package uuid

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// recordLayout prefixes record IDs so lexical order follows creation order.
const recordLayout = "20060102_150405"

// Generator creates UUID v7 based identifiers.
type Generator struct{}

// New creates a new Generator.
func New() *Generator {
	return &Generator{}
}

// NewID returns a UUID7 string.
func (Generator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid7: %w", err)
	}
	return id.String(), nil
}

// NewRecordID returns "YYYYMMDD_HHMMSS_<uuid7>". The UUID carries a millisecond timestamp and a
// per-process counter, so IDs sharing a second still sort in the order they were issued.
func (g Generator) NewRecordID(now time.Time) (string, error) {
	id, err := g.NewID()
	if err != nil {
		return "", err
	}
	return now.Format(recordLayout) + "_" + id, nil
}
