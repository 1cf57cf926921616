package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bher20/tagihanpln/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the ledger database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := migrate.Up(cmd.Context(), cfg.Store.Driver, cfg.Store.DSN); err != nil {
			return err
		}
		v, err := migrate.Version(cmd.Context(), cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			return err
		}
		zap.L().Info("migrations applied", zap.String("driver", cfg.Store.Driver), zap.Int64("version", v))
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrate.Down(cmd.Context(), cfg.Store.Driver, cfg.Store.DSN)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print migration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrate.Status(cmd.Context(), cfg.Store.Driver, cfg.Store.DSN)
	},
}

func checkSQLDriver(cmd *cobra.Command, args []string) error {
	if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
		return err
	}
	if cfg.Store.Driver == "" || cfg.Store.Driver == "memory" {
		return fmt.Errorf("migrate needs store.driver sqlite or postgres (got %q)", cfg.Store.Driver)
	}
	return nil
}

func init() {
	migrateCmd.PersistentPreRunE = checkSQLDriver
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}
