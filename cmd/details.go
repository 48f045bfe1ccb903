package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/lead-hunter/internal/app"
)

// newDetailsCmd creates the 'details' subcommand, which renders one listing page and prints its
// full description and phone number.
func newDetailsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "details <listing-url>",
		Short: "Fetch the description and phone number of one listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := resolveEnv(cmd.Context())
			if err != nil {
				return err
			}
			k, err := app.NewKijiji(e.cfg, e.logger)
			if err != nil {
				return err
			}
			details, err := k.Details(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("fetch details: %w", err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(details)
		},
	}
}
