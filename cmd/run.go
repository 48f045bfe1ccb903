package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/lead-hunter/internal/app"
	"github.com/JakeFAU/lead-hunter/internal/hunter"
)

// Runner executes one orchestrator pass.
type Runner interface {
	Run(ctx context.Context) hunter.Stats
}

type appAdapter struct {
	*app.App
}

func (a appAdapter) GetHunter() Runner {
	return a.App.GetHunter()
}

// newRunCmd creates the 'run' subcommand, which performs a single pass over every enabled source.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run every enabled source once",
		Long: `Polls every enabled source once, records new leads and queues their notifications.
The command exits non-zero when any source failed, after reporting all partial results.`,
		Args: cobra.NoArgs,
		RunE: runRunCommand,
	}
}

func runRunCommand(cmd *cobra.Command, _ []string) error {
	e, err := resolveEnv(cmd.Context())
	if err != nil {
		return err
	}
	a, err := newApp(e.cfg, e.logger, app.Options{DryRun: e.dryRun})
	if err != nil {
		return fmt.Errorf("initialize application services: %w", err)
	}
	defer a.Close()

	stats := a.GetHunter().Run(cmd.Context())
	fmt.Fprintf(cmd.OutOrStdout(),
		"status=%s found=%d new=%d duplicates=%d notified=%d errors=%d duration=%s\n",
		stats.Status(), stats.TotalFound, stats.NewLeads, stats.Duplicates, stats.Notified, stats.Errors, stats.Duration)
	return stats.Err()
}
