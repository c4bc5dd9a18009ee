package main

import (
	"github.com/spf13/cobra"

	"github.com/messagely/messagely-api/internal/server"
	"github.com/messagely/messagely-api/pkg/logger"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the messagely HTTP server",
	Long: `Starts the messagely HTTP server on $PORT using the store selected by
STORE_DRIVER (mongo, postgres or sqlite). Stops gracefully on SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap(cmd)
		if err != nil {
			return err
		}

		srv, err := server.New(cmd.Context(), cfg, logger.Component("server"))
		if err != nil {
			log.Error().Err(err).Msg("failed to start server")
			return err
		}
		return srv.Start(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
