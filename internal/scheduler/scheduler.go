// Package scheduler re-runs the lead hunter on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Config controls the schedule.
type Config struct {
	// Cron is a standard five-field expression (minute hour day month weekday); descriptors such
	// as @daily and @every 6h are accepted too.
	Cron       string
	RunOnStart bool
}

// RunFunc executes one run.
type RunFunc func(ctx context.Context)

// Scheduler wraps a cron instance that never overlaps runs.
type Scheduler struct {
	cfg      Config
	run      RunFunc
	schedule cron.Schedule
	logger   *zap.Logger
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// New validates the cron expression and returns a Scheduler.
func New(cfg Config, run RunFunc, logger *zap.Logger) (*Scheduler, error) {
	if run == nil {
		return nil, fmt.Errorf("run func is required")
	}
	schedule, err := parser.Parse(cfg.Cron)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", cfg.Cron, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{cfg: cfg, run: run, schedule: schedule, logger: logger.Named("scheduler")}, nil
}

// NextRun returns the first activation after now.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	return s.schedule.Next(now)
}

// Run blocks until ctx is done, then waits for an in-flight run to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	cl := cronLogger{logger: s.logger}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	id := c.Schedule(s.schedule, cron.FuncJob(func() {
		s.logger.Info("scheduled run triggered")
		s.run(ctx)
	}))

	c.Start()
	s.logger.Info("scheduler started",
		zap.String("cron", s.cfg.Cron),
		zap.Time("next_run", s.NextRun(time.Now())),
	)
	if s.cfg.RunOnStart {
		// The wrapped job carries the chain, so a tick that fires meanwhile is skipped.
		c.Entry(id).WrappedJob.Run()
	}

	<-ctx.Done()
	s.logger.Info("scheduler stopping")
	<-c.Stop().Done()
	return nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
