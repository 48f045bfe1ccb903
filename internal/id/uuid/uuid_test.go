// Package uuid includes tests for the UUID generator wrapper.
package uuid

import (
	"slices"
	"strings"
	"testing"
	"time"

	goUUID "github.com/google/uuid"
)

// TestGeneratorNewID ensures generated IDs are unique and valid UUIDs.
func TestGeneratorNewID(t *testing.T) {
	t.Parallel()

	gen := New()
	id1, err := gen.NewID()
	if err != nil {
		t.Fatalf("NewID() error = %v", err)
	}
	id2, err := gen.NewID()
	if err != nil {
		t.Fatalf("NewID() error = %v", err)
	}
	if id1 == id2 {
		t.Fatalf("expected unique IDs, got %s and %s", id1, id2)
	}
	if _, err := goUUID.Parse(id1); err != nil {
		t.Fatalf("id1 not valid UUID: %v", err)
	}
}

// TestGeneratorNewRecordID checks the timestamp prefix and same-second uniqueness.
func TestGeneratorNewRecordID(t *testing.T) {
	t.Parallel()

	gen := New()
	now := time.Date(2026, 3, 14, 6, 5, 9, 0, time.UTC)
	a, err := gen.NewRecordID(now)
	if err != nil {
		t.Fatalf("NewRecordID() error = %v", err)
	}
	b, err := gen.NewRecordID(now)
	if err != nil {
		t.Fatalf("NewRecordID() error = %v", err)
	}
	if !strings.HasPrefix(a, "20260314_060509_") {
		t.Fatalf("unexpected prefix in %s", a)
	}
	if len(a) != len("20260314_060509_")+36 {
		t.Fatalf("unexpected length for %s", a)
	}
	if a == b {
		t.Fatalf("expected distinct IDs within the same second, got %s twice", a)
	}
}

// TestGeneratorNewRecordIDSortsInIssueOrder issues many IDs for one frozen second.
func TestGeneratorNewRecordIDSortsInIssueOrder(t *testing.T) {
	t.Parallel()

	gen := New()
	now := time.Date(2026, 3, 14, 6, 5, 9, 0, time.UTC)
	ids := make([]string, 0, 200)
	for range 200 {
		id, err := gen.NewRecordID(now)
		if err != nil {
			t.Fatalf("NewRecordID() error = %v", err)
		}
		ids = append(ids, id)
	}
	if !slices.IsSorted(ids) {
		t.Fatalf("record IDs are not in issue order: %v", ids)
	}
	if len(slices.Compact(slices.Clone(ids))) != len(ids) {
		t.Fatalf("duplicate record IDs issued")
	}
}
