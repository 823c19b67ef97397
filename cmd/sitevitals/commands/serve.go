package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sitevitals/sitevitals/pkg/appctx"
	"github.com/sitevitals/sitevitals/pkg/config"
	"github.com/sitevitals/sitevitals/pkg/server/app"
)

// NewServeCommand constructs the 'serve' command, running the HTTP API
// until interrupted.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the scan HTTP API server",
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ok := appctx.ConfigFrom(cmd.Context())
			if !ok {
				cfg = config.DefaultConfig()
			}

			backend, err := newStorageBackend(cfg)
			if err != nil {
				return fmt.Errorf("create storage backend: %w", err)
			}

			server, err := app.New(cfg, backend, nil)
			if err != nil {
				return fmt.Errorf("assemble server: %w", err)
			}

			log.Info().
				Str("command", "serve").
				Str("addr", cfg.Server.Addr).
				Int("port", cfg.Server.Port).
				Msg("Starting server")
			return server.Run(cmd.Context())
		},
	}
	return cmd
}
