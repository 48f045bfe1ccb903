package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/lead-hunter/internal/lead"
	"github.com/JakeFAU/lead-hunter/internal/queue"
)

func sampleLead() lead.Lead {
	return lead.Lead{
		Title:       "Basement renovation",
		URL:         "https://www.kijiji.ca/v-services/sudbury/reno/123",
		Location:    "Sudbury",
		Description: "Need drawings for a basement apartment.",
		Source:      lead.SourceKijiji,
	}
}

func TestFormatLead(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		edit func(*lead.Lead)
		want string
	}{
		{
			name: "minimal",
			edit: func(*lead.Lead) {},
			want: "🏠 New Lead: Basement renovation\n" +
				"📍 Location: Sudbury\n" +
				"🔗 Link: https://www.kijiji.ca/v-services/sudbury/reno/123\n" +
				"📝 Description: Need drawings for a basement apartment.\n" +
				"🔍 Source: kijiji",
		},
		{
			name: "budget and posted time",
			edit: func(l *lead.Lead) {
				l.Budget = "$5,000"
				l.PostedTime = "2026-01-02T03:04:05Z"
			},
			want: "🏠 New Lead: Basement renovation\n" +
				"📍 Location: Sudbury\n" +
				"🔗 Link: https://www.kijiji.ca/v-services/sudbury/reno/123\n" +
				"💰 Budget: $5,000\n" +
				"📝 Description: Need drawings for a basement apartment.\n" +
				"⏰ Posted: 2026-01-02T03:04:05Z\n" +
				"🔍 Source: kijiji",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := sampleLead()
			tt.edit(&l)
			assert.Equal(t, tt.want, FormatLead(l))
		})
	}
}

func TestFormatLeadTruncatesDescription(t *testing.T) {
	t.Parallel()

	l := sampleLead()
	l.Description = strings.Repeat("x", 250)
	msg := FormatLead(l)
	assert.Contains(t, msg, "📝 Description: "+strings.Repeat("x", DescriptionLimit)+"...\n")
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	got := FormatSummary(Summary{
		TotalFound: 5,
		NewLeads:   2,
		Duplicates: 3,
		Notified:   2,
		Sources:    []lead.Source{lead.SourceKijiji, lead.SourceRSS},
	})
	want := "📊 Lead Hunter Summary\n" +
		"━━━━━━━━━━━━━━━━━━━━\n" +
		"🔍 Total found: 5\n" +
		"✨ New leads: 2\n" +
		"♻️ Duplicates: 3\n" +
		"📤 Notifications sent: 2\n" +
		"📁 Sources: kijiji, rss"
	assert.Equal(t, want, got)
}

func TestSendLead(t *testing.T) {
	t.Parallel()

	provider := &queue.MockProvider{}
	provider.On("Enqueue", mock.Anything, "webchat", "ops", FormatLead(sampleLead())).
		Return(queue.Record{ID: "20260101_060000_abc"}, nil).Once()

	n := New(Config{Enabled: true, Channel: "webchat", Recipient: "ops"}, provider, zap.NewNop())
	ok, err := n.SendLead(context.Background(), sampleLead())
	require.NoError(t, err)
	assert.True(t, ok)
	provider.AssertExpectations(t)
}

func TestSendLeadDisabled(t *testing.T) {
	t.Parallel()

	provider := &queue.MockProvider{}
	n := New(Config{Enabled: false, Channel: "webchat"}, provider, zap.NewNop())
	ok, err := n.SendLead(context.Background(), sampleLead())
	require.NoError(t, err)
	assert.False(t, ok)
	provider.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendLeadEnqueueFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	provider := &queue.MockProvider{}
	provider.On("Enqueue", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(queue.Record{}, boom)

	n := New(Config{Enabled: true, Channel: "webchat"}, provider, zap.NewNop())
	ok, err := n.SendLead(context.Background(), sampleLead())
	require.ErrorIs(t, err, boom)
	assert.False(t, ok)
}

func TestSendSummaryIgnoresEnabledGate(t *testing.T) {
	t.Parallel()

	provider := &queue.MockProvider{}
	provider.On("Enqueue", mock.Anything, "webchat", "", mock.MatchedBy(func(msg string) bool {
		return strings.HasPrefix(msg, "📊 Lead Hunter Summary")
	})).Return(queue.Record{}, nil).Once()

	n := New(Config{Enabled: false, Channel: "webchat"}, provider, zap.NewNop())
	require.NoError(t, n.SendSummary(context.Background(), Summary{NewLeads: 1}))
	provider.AssertExpectations(t)
}
