// Package notify turns leads and run summaries into human-readable messages and hands them to
// the notification queue.
package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/lead-hunter/internal/extract"
	"github.com/JakeFAU/lead-hunter/internal/lead"
	"github.com/JakeFAU/lead-hunter/internal/queue"
)

// DescriptionLimit bounds the description excerpt in a lead message.
const DescriptionLimit = 200

// Summary is the run outcome rendered into the summary message.
type Summary struct {
	TotalFound int
	NewLeads   int
	Duplicates int
	Notified   int
	Sources    []lead.Source
}

// Config controls where messages go and whether lead messages are sent at all.
type Config struct {
	Enabled   bool
	Channel   string
	Recipient string
}

// Notifier formats messages and enqueues them.
type Notifier struct {
	queue  queue.Provider
	cfg    Config
	logger *zap.Logger
}

// New builds a Notifier on top of provider.
func New(cfg Config, provider queue.Provider, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if provider == nil {
		provider = &queue.NoOpProvider{}
	}
	return &Notifier{queue: provider, cfg: cfg, logger: logger.Named("notifier")}
}

// SendLead queues a lead message. It reports false without error when lead notifications are disabled.
func (n *Notifier) SendLead(ctx context.Context, l lead.Lead) (bool, error) {
	if !n.cfg.Enabled {
		n.logger.Info("notifications disabled, skipping", zap.String("title", l.Title))
		return false, nil
	}
	rec, err := n.queue.Enqueue(ctx, n.cfg.Channel, n.cfg.Recipient, FormatLead(l))
	if err != nil {
		return false, fmt.Errorf("enqueue lead %s: %w", l.URL, err)
	}
	n.logger.Info("queued notification for lead", zap.String("title", l.Title), zap.String("record", rec.ID))
	return true, nil
}

// SendSummary queues the run summary. The enabled gate only covers per-lead messages.
func (n *Notifier) SendSummary(ctx context.Context, s Summary) error {
	if _, err := n.queue.Enqueue(ctx, n.cfg.Channel, n.cfg.Recipient, FormatSummary(s)); err != nil {
		return fmt.Errorf("enqueue summary: %w", err)
	}
	return nil
}

// FormatLead renders the fixed multi-line lead message.
func FormatLead(l lead.Lead) string {
	lines := []string{
		"🏠 New Lead: " + l.Title,
		"📍 Location: " + l.Location,
		"🔗 Link: " + l.URL,
	}
	if l.Budget != "" {
		lines = append(lines, "💰 Budget: "+l.Budget)
	}
	lines = append(lines, "📝 Description: "+extract.Ellipsize(l.Description, DescriptionLimit, DescriptionLimit))
	if l.PostedTime != "" {
		lines = append(lines, "⏰ Posted: "+l.PostedTime)
	}
	lines = append(lines, "🔍 Source: "+string(l.Source))
	return strings.Join(lines, "\n")
}

// FormatSummary renders the run summary message.
func FormatSummary(s Summary) string {
	names := make([]string, 0, len(s.Sources))
	for _, src := range s.Sources {
		names = append(names, string(src))
	}
	var b strings.Builder
	b.WriteString("📊 Lead Hunter Summary\n")
	b.WriteString("━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&b, "🔍 Total found: %d\n", s.TotalFound)
	fmt.Fprintf(&b, "✨ New leads: %d\n", s.NewLeads)
	fmt.Fprintf(&b, "♻️ Duplicates: %d\n", s.Duplicates)
	fmt.Fprintf(&b, "📤 Notifications sent: %d\n", s.Notified)
	fmt.Fprintf(&b, "📁 Sources: %s", strings.Join(names, ", "))
	return b.String()
}
