// Package cmd defines and implements the CLI commands for the leadhunter executable.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/lead-hunter/internal/app"
	"github.com/JakeFAU/lead-hunter/internal/config"
	"github.com/JakeFAU/lead-hunter/internal/logging"
)

// envKeyType is the key for storing the runtime environment in the context.
type envKeyType string

const envKey envKeyType = "env"

// env is what every subcommand receives after the root pre-run hook.
type env struct {
	cfg    config.Config
	logger *zap.Logger
	dryRun bool
}

// App defines the application interface that run and schedule use.
// This allows us to inject a fake app during tests.
type App interface {
	Close()
	GetLogger() *zap.Logger
	GetHunter() Runner
}

// newApp is the application factory. It's a variable so tests can replace it.
var newApp = func(cfg config.Config, logger *zap.Logger, opts app.Options) (App, error) {
	a, err := app.NewApp(cfg, logger, opts)
	if err != nil {
		return nil, err
	}
	return appAdapter{a}, nil
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:   "leadhunter",
		Short: "Polls classifieds and feeds for renovation and permit leads.",
		Long: `leadhunter searches a rendered classifieds site, RSS feeds and alert feeds for
postings that match configured keywords, filters out leads it has already seen, and
queues a notification for every new one.`,
		SilenceUsage: true,

		// Config and logger are built once here, before any subcommand runs.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			ctx := context.WithValue(cmd.Context(), envKey, &env{cfg: cfg, logger: logger, dryRun: dryRun})
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if e, ok := cmd.Context().Value(envKey).(*env); ok && e != nil {
				_ = e.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (TOML or YAML)")
	cmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "find and record leads without queueing notifications")

	cmd.AddCommand(newRunCmd(), newScheduleCmd(), newDetailsCmd(), newDeliverCmd())
	return cmd
}

func resolveEnv(ctx context.Context) (*env, error) {
	e, ok := ctx.Value(envKey).(*env)
	if !ok || e == nil {
		return nil, errors.New("configuration not initialized")
	}
	return e, nil
}

// Execute is the main entry point. It returns an error when a command fails or a run is degraded.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}
