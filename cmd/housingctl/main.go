// Команда housingctl обслуживает сервис: миграции, администраторы, токены, очистка хранилища.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/housing-backend/internal/app"
	"github.com/ignatzorin/housing-backend/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "housingctl",
	Short:         "Maintenance tool for the housing listings backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		app.InitLogger(cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, adminCmd, tokenCmd, cleanupCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "housingctl:", err)
		os.Exit(1)
	}
}

// withApp открывает соединение с БД на время выполнения fn.
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	a, err := app.New(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
