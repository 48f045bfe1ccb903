package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsBadExpression(t *testing.T) {
	t.Parallel()

	tests := []string{"", "not a cron", "61 * * * *", "0 6 * * * *"}
	for _, expr := range tests {
		_, err := New(Config{Cron: expr}, func(context.Context) {}, zap.NewNop())
		assert.Error(t, err, expr)
	}
}

func TestNewRequiresRunFunc(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Cron: "0 6 * * *"}, nil, zap.NewNop())
	require.Error(t, err)
}

func TestNextRunHonorsAllFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		expr string
		now  time.Time
		want time.Time
	}{
		{
			name: "daily at six",
			expr: "0 6 * * *",
			now:  time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC),
			want: time.Date(2026, 3, 3, 6, 0, 0, 0, time.UTC),
		},
		{
			name: "weekdays only",
			expr: "30 6 * * 1-5",
			now:  time.Date(2026, 3, 6, 7, 0, 0, 0, time.UTC), // Friday
			want: time.Date(2026, 3, 9, 6, 30, 0, 0, time.UTC),
		},
		{
			name: "first of the month",
			expr: "0 6 1 * *",
			now:  time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := New(Config{Cron: tt.expr}, func(context.Context) {}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.NextRun(tt.now))
		})
	}
}

func TestRunOnStartThenStop(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	s, err := New(Config{Cron: "0 6 1 1 *", RunOnStart: true}, func(context.Context) {
		runs.Add(1)
		cancel()
	}, zap.NewNop())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, int32(1), runs.Load())
}

func TestRunWithoutRunOnStartWaitsForContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var runs atomic.Int32
	s, err := New(Config{Cron: "0 6 1 1 *"}, func(context.Context) { runs.Add(1) }, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Run(ctx))
	assert.Equal(t, int32(0), runs.Load())
}

func TestCronLoggerAdapter(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	l := cronLogger{logger: zap.New(core)}

	l.Info("wake", "now", "06:00")
	l.Error(errors.New("panic"), "job failed", "entry", 1)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "06:00", entries[0].ContextMap()["now"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "panic", entries[1].ContextMap()["error"])
}
