package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/housing-backend/internal/app"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove image files that no listing references",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			report, err := a.Cleanup.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d removed=%d failed=%d dirs_removed=%d\n",
				report.Scanned, report.Removed, report.Failed, report.DirsRemoved)
			return nil
		})
	},
}
