package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/messagely/messagely-api/internal/infrastructure/config"
	"github.com/messagely/messagely-api/pkg/logger"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:          "messagely",
	Short:        "Direct messaging API",
	SilenceUsage: true,
}

// bootstrap loads configuration and initialises the shared logger.
func bootstrap(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "messagely",
	})
	return cfg, log, nil
}
