package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/messagely/messagely-api/internal/infrastructure/config"
	"github.com/messagely/messagely-api/internal/infrastructure/db/sqlstore"
)

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run SQL store migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap(cmd)
		if err != nil {
			return err
		}

		var dialect sqlstore.Dialect
		var dsn string
		switch cfg.Store.Driver {
		case config.DriverPostgres:
			dialect, dsn = sqlstore.Postgres, cfg.Store.DatabaseURL
		case config.DriverSQLite:
			dialect, dsn = sqlstore.SQLite, cfg.Store.SQLitePath
		default:
			return fmt.Errorf("migrate: STORE_DRIVER %q has no SQL schema", cfg.Store.Driver)
		}

		if err := sqlstore.Migrate(dialect, dsn); err != nil {
			return err
		}
		log.Info().Str("driver", cfg.Store.Driver).Msg("migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
}
