package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ignatzorin/housing-backend/internal/app"
)

var adminEmail string

// adminCmd управление флагом администратора в user_profiles.
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage administrator accounts",
	Long: `Grant or revoke moderation rights.

Available subcommands:
  grant  - Mark a user as administrator
  revoke - Remove administrator rights
  list   - List administrators`,
}

var adminGrantCmd = &cobra.Command{
	Use:   "grant <user-id>",
	Short: "Mark a user as administrator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAdmin(cmd, args[0], true)
	},
}

var adminRevokeCmd = &cobra.Command{
	Use:   "revoke <user-id>",
	Short: "Remove administrator rights",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAdmin(cmd, args[0], false)
	},
}

var adminListCmd = &cobra.Command{
	Use:   "list",
	Short: "List administrators",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			admins, err := a.Profiles.ListAdmins(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEMAIL\tSINCE")
			for _, p := range admins {
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Email, p.UpdatedAt.Format("2006-01-02"))
			}
			return w.Flush()
		})
	},
}

func init() {
	adminGrantCmd.Flags().StringVar(&adminEmail, "email", "", "email stored for a profile created by this command")
	adminCmd.AddCommand(adminGrantCmd, adminRevokeCmd, adminListCmd)
}

func setAdmin(cmd *cobra.Command, rawID string, isAdmin bool) error {
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", rawID, err)
	}

	return withApp(cmd.Context(), func(a *app.App) error {
		profile, err := a.Profiles.SetAdmin(cmd.Context(), userID, adminEmail, isAdmin)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is_admin=%t\n", profile.ID, profile.IsAdmin)
		return nil
	})
}
