package cmd

import (
	"fmt"

	"travel-booking/pkg/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|redo|reset|version]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "status", "redo", "reset", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}

			config, logger, err := bootstrap("migrate")
			if err != nil {
				return err
			}
			defer logger.Sync()

			logger.Info("Running migrations", zap.String("command", command))
			if err := database.Migrate(cmd.Context(), config.Database, command); err != nil {
				return fmt.Errorf("migrate %s: %w", command, err)
			}
			logger.Info("Migrations done", zap.String("command", command))
			return nil
		},
	}
}
