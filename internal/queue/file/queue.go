// Package file implements the notification queue as one JSON file per pending record.
//
// Pending records live in the queue directory as pending_<id>.json. The consumer lists them
// with Pending and moves each into sent/ with Archive once delivered.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/lead-hunter/internal/queue"
	"github.com/JakeFAU/lead-hunter/internal/storage/local"
)

const (
	pendingPrefix   = "pending_"
	recordExt       = ".json"
	sentDir         = "sent"
	timestampLayout = "20060102_150405"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// IDGenerator issues record IDs that sort in creation order.
type IDGenerator interface {
	NewRecordID(now time.Time) (string, error)
}

// Queue is a directory-backed queue.Provider.
type Queue struct {
	dir    string
	clock  Clock
	ids    IDGenerator
	logger *zap.Logger
}

var _ queue.Provider = (*Queue)(nil)

// New prepares dir and returns a queue rooted there.
func New(dir string, clock Clock, ids IDGenerator, logger *zap.Logger) (*Queue, error) {
	if clock == nil || ids == nil {
		return nil, fmt.Errorf("clock and id generator are required")
	}
	if err := local.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("prepare queue dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{dir: dir, clock: clock, ids: ids, logger: logger.Named("queue")}, nil
}

// Enqueue writes a pending record. The write is atomic, so a consumer never reads a partial file.
func (q *Queue) Enqueue(ctx context.Context, channel, recipient, message string) (queue.Record, error) {
	if err := ctx.Err(); err != nil {
		return queue.Record{}, fmt.Errorf("enqueue canceled: %w", err)
	}
	now := q.clock.Now()
	id, err := q.ids.NewRecordID(now)
	if err != nil {
		return queue.Record{}, fmt.Errorf("record id: %w", err)
	}
	rec := queue.Record{
		ID:        id,
		Channel:   channel,
		Recipient: recipient,
		Message:   message,
		Timestamp: now.Format(timestampLayout),
	}
	path, err := local.Resolve(q.dir, pendingPrefix+id+recordExt)
	if err != nil {
		return queue.Record{}, err
	}
	payload, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return queue.Record{}, fmt.Errorf("marshal record: %w", err)
	}
	if err := local.WriteFileAtomic(path, payload, 0o600); err != nil {
		return queue.Record{}, fmt.Errorf("write record: %w", err)
	}
	q.logger.Debug("notification queued", zap.String("id", id), zap.String("channel", channel))
	return rec, nil
}

// Pending lists pending records, oldest first. Files that cannot be decoded are logged and skipped.
func (q *Queue) Pending() ([]queue.Record, error) {
	matches, err := filepath.Glob(filepath.Join(q.dir, pendingPrefix+"*"+recordExt))
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	slices.Sort(matches)

	records := make([]queue.Record, 0, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			q.logger.Warn("read pending record", zap.String("path", path), zap.Error(err))
			continue
		}
		var rec queue.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			q.logger.Warn("decode pending record", zap.String("path", path), zap.Error(err))
			continue
		}
		rec.ID = strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), pendingPrefix), recordExt)
		records = append(records, rec)
	}
	return records, nil
}

// Archive moves a delivered record into sent/.
func (q *Queue) Archive(rec queue.Record) error {
	name := pendingPrefix + rec.ID + recordExt
	src, err := local.Resolve(q.dir, name)
	if err != nil {
		return err
	}
	archiveDir := filepath.Join(q.dir, sentDir)
	if err := local.EnsureDir(archiveDir); err != nil {
		return fmt.Errorf("prepare archive dir: %w", err)
	}
	dst, err := local.Resolve(archiveDir, name)
	if err != nil {
		return err
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("archive record %s: %w", rec.ID, err)
	}
	return nil
}

// Close is a no-op; every write is already durable.
func (q *Queue) Close() error {
	return nil
}
