package cli

import (
	"fmt"

	"invoicer/internal/database"
	"invoicer/internal/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("migrate")
		if cfg.DBDriver == "memory" {
			return fmt.Errorf("DB_DRIVER=memory has no schema to migrate")
		}

		db, err := database.NewConnection(cfg.DBDriver, cfg.DSN())
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		log.Info().Str("driver", cfg.DBDriver).Msg("Schema migrated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
