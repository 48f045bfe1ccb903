package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/lead-hunter/internal/app"
	"github.com/JakeFAU/lead-hunter/internal/scheduler"
)

// newScheduleCmd creates the 'schedule' subcommand, which re-runs the hunter on a cron schedule
// until interrupted.
func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run on the configured cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE:  runScheduleCommand,
	}
}

func runScheduleCommand(cmd *cobra.Command, _ []string) error {
	e, err := resolveEnv(cmd.Context())
	if err != nil {
		return err
	}
	logger := e.logger

	// Each tick builds its own app so the dedup lock is only held while a run is in flight.
	runOnce := func(ctx context.Context) {
		a, err := newApp(e.cfg, logger, app.Options{DryRun: e.dryRun})
		if err != nil {
			logger.Error("scheduled run skipped", zap.Error(err))
			return
		}
		defer a.Close()
		a.GetHunter().Run(ctx)
	}

	s, err := scheduler.New(scheduler.Config{
		Cron:       e.cfg.Schedule.Cron,
		RunOnStart: e.cfg.Schedule.RunOnStart,
	}, runOnce, logger)
	if err != nil {
		return fmt.Errorf("configure schedule: %w", err)
	}
	return s.Run(cmd.Context())
}
