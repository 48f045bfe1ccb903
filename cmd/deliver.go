package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/lead-hunter/internal/clock/system"
	"github.com/JakeFAU/lead-hunter/internal/id/uuid"
	queuefile "github.com/JakeFAU/lead-hunter/internal/queue/file"
)

// newDeliverCmd creates the 'deliver' subcommand: a reference consumer that prints each pending
// notification for an external messaging tool and archives it.
func newDeliverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deliver",
		Short: "Print pending notifications and archive them",
		Args:  cobra.NoArgs,
		RunE:  runDeliverCommand,
	}
}

func runDeliverCommand(cmd *cobra.Command, _ []string) error {
	e, err := resolveEnv(cmd.Context())
	if err != nil {
		return err
	}
	q, err := queuefile.New(e.cfg.Notifications.QueueDir, system.New(), uuid.New(), e.logger)
	if err != nil {
		return fmt.Errorf("open notification queue: %w", err)
	}
	pending, err := q.Pending()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		e.logger.Info("no pending notifications")
		return nil
	}

	out := cmd.OutOrStdout()
	for _, rec := range pending {
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record %s: %w", rec.ID, err)
		}
		fmt.Fprintf(out, "NOTIFICATION: %s\n", payload)
		if e.dryRun {
			continue
		}
		if err := q.Archive(rec); err != nil {
			return err
		}
		e.logger.Info("notification delivered", zap.String("id", rec.ID))
	}
	return nil
}
