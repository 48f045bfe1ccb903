// Package dedup persists the URLs of leads already accepted so later runs can skip them.
//
// The whole document is loaded into memory on Open and rewritten on every successful Add,
// through a temp file and rename. An exclusive lock file next to the document is held from
// Open to Close so two overlapping runs cannot interleave writes.
package dedup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/JakeFAU/lead-hunter/internal/clock/system"
	"github.com/JakeFAU/lead-hunter/internal/hash/sha256"
	"github.com/JakeFAU/lead-hunter/internal/lead"
	"github.com/JakeFAU/lead-hunter/internal/storage/local"
)

// ErrLocked is returned by Open when another process holds the store.
var ErrLocked = errors.New("dedup store is locked by another run")

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// Hasher computes the short content digest stored with each entry.
type Hasher interface {
	Short(data []byte) (string, error)
}

// Options configures Open.
type Options struct {
	Path      string
	Retention time.Duration
	Clock     Clock
	Hasher    Hasher
	Logger    *zap.Logger
}

// Entry is the persisted snapshot of an accepted lead. Hash is written for future
// change detection and is not read anywhere yet.
type Entry struct {
	lead.Lead
	Added Timestamp `json:"added"`
	Hash  string    `json:"hash"`
}

type document struct {
	SeenURLs []string         `json:"seen_urls"`
	Leads    map[string]Entry `json:"leads"`
	Updated  Timestamp        `json:"updated"`
}

// Store is a single-writer dedup store. It is not safe for concurrent use.
type Store struct {
	path   string
	clock  Clock
	hasher Hasher
	logger *zap.Logger
	lock   *flock.Flock

	seen  map[string]struct{}
	leads map[string]Entry
}

// Open locks and loads the store at opts.Path, then prunes entries older than opts.Retention.
// A missing document starts an empty store; an unreadable one is logged and replaced on the
// next Add.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("dedup store path is required")
	}
	if opts.Clock == nil {
		opts.Clock = system.New()
	}
	if opts.Hasher == nil {
		opts.Hasher = sha256.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if err := local.EnsureDir(filepath.Dir(opts.Path)); err != nil {
		return nil, fmt.Errorf("prepare dedup dir: %w", err)
	}

	lock := flock.New(opts.Path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock dedup store: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	s := &Store{
		path:   opts.Path,
		clock:  opts.Clock,
		hasher: opts.Hasher,
		logger: opts.Logger.Named("dedup"),
		lock:   lock,
		seen:   make(map[string]struct{}),
		leads:  make(map[string]Entry),
	}
	s.load()
	if removed := s.Prune(opts.Retention); removed > 0 {
		s.logger.Info("pruned old leads", zap.Int("removed", removed))
	}
	return s, nil
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err != nil {
		s.logger.Warn("failed to read dedup store, starting empty", zap.String("path", s.path), zap.Error(err))
		return
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("failed to decode dedup store, starting empty", zap.String("path", s.path), zap.Error(err))
		return
	}
	for _, u := range doc.SeenURLs {
		s.seen[u] = struct{}{}
	}
	for u, e := range doc.Leads {
		s.seen[u] = struct{}{}
		s.leads[u] = e
	}
	s.logger.Debug("dedup store loaded", zap.Int("seen", len(s.seen)))
}

// IsNew reports whether url has not been accepted before.
func (s *Store) IsNew(url string) bool {
	_, ok := s.seen[url]
	return !ok
}

// Add records l and persists the store. It returns false without mutating anything when the
// URL is already present. When the write fails the lead stays recorded in memory and the
// error is returned, so memory may be ahead of disk.
func (s *Store) Add(l lead.Lead) (bool, error) {
	if !s.IsNew(l.URL) {
		return false, nil
	}
	digest, err := s.hasher.Short(l.Fingerprint())
	if err != nil {
		return false, fmt.Errorf("hash lead: %w", err)
	}
	s.seen[l.URL] = struct{}{}
	s.leads[l.URL] = Entry{Lead: l, Added: Timestamp{Time: s.clock.Now()}, Hash: digest}
	if err := s.save(); err != nil {
		return true, err
	}
	return true, nil
}

// Prune removes entries added before now minus window and returns how many were removed.
// Entries with an unknown added time are kept. A non-positive window keeps everything.
func (s *Store) Prune(window time.Duration) int {
	if window <= 0 {
		return 0
	}
	cutoff := s.clock.Now().Add(-window)
	removed := 0
	for u, e := range s.leads {
		if e.Added.IsZero() || !e.Added.Before(cutoff) {
			continue
		}
		delete(s.leads, u)
		delete(s.seen, u)
		removed++
	}
	return removed
}

// Len returns the number of URLs the store treats as seen.
func (s *Store) Len() int {
	return len(s.seen)
}

// Entry returns the stored snapshot for url.
func (s *Store) Entry(url string) (Entry, bool) {
	e, ok := s.leads[url]
	return e, ok
}

// Close releases the run lock.
func (s *Store) Close() error {
	if err := s.lock.Unlock(); err != nil {
		return fmt.Errorf("unlock dedup store: %w", err)
	}
	return nil
}

func (s *Store) save() error {
	urls := make([]string, 0, len(s.seen))
	for u := range s.seen {
		urls = append(urls, u)
	}
	slices.Sort(urls)

	payload, err := json.MarshalIndent(document{
		SeenURLs: urls,
		Leads:    s.leads,
		Updated:  Timestamp{Time: s.clock.Now()},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dedup store: %w", err)
	}
	if err := local.WriteFileAtomic(s.path, payload, 0o600); err != nil {
		return fmt.Errorf("save dedup store: %w", err)
	}
	return nil
}
