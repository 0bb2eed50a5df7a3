package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ignatzorin/housing-backend/internal/service"
)

var (
	tokenEmail string
	tokenTTL   time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Work with access tokens",
}

// tokenIssueCmd выпускает токен тем же секретом, что и провайдер авторизации. Нужен для
// локальной разработки и smoke-тестов.
var tokenIssueCmd = &cobra.Command{
	Use:   "issue <user-id>",
	Short: "Issue a signed access token for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", args[0], err)
		}
		if tokenTTL <= 0 {
			return fmt.Errorf("--ttl must be positive")
		}

		tokens := service.NewTokenManager(cfg.AuthJWTSecret, cfg.AuthJWTAudience)
		token, err := tokens.Issue(userID, tokenEmail, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim")
	tokenIssueCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
	tokenCmd.AddCommand(tokenIssueCmd)
}
