package cmd

import (
	"fmt"
	"log"
	"os"

	"travel-booking/pkg/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "travel-booking",
		Short:         "Travel booking payment service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", ".env", "path to the env config file")

	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(workerCmd())

	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads the config and builds the logger shared by all commands.
func bootstrap(name string) (*utils.Config, *zap.Logger, error) {
	config, err := utils.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := utils.InitLogger(config.App.LogPath, name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}

	return config, logger, nil
}
