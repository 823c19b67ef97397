package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sitevitals/sitevitals/pkg/appctx"
	"github.com/sitevitals/sitevitals/pkg/config"
)

const cliExecutable = "sitevitals"

// NewCommand constructs the top-level sitevitals CLI command, wiring
// global flags, configuration loading and log setup.
func NewCommand() *cobra.Command {
	var (
		configFile      string
		workspaceDir    string
		historyDisabled bool
		verbosityCount  int
		verbose         bool
	)

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "SiteVitals audits website health across five analyzers",
		Long: `SiteVitals dispatches a target URL to the fonts, SEO, performance,
accessibility and security analyzers, normalizes their scores and
aggregates them into an overall health report with ranked issues.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			manager := config.NewManager()
			if err := manager.Load(cmd.Flags(), configFile); err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			cfg := manager.Get()

			// CLI-only overrides that sit outside the koanf key space.
			if workspaceDir != "" {
				cfg.History.WorkspaceDir = workspaceDir
			}
			if historyDisabled {
				cfg.History.Enabled = false
			}

			setupLogging(cfg.Log, verbosityCount, verbose)

			ctx := appctx.WithConfig(cmd.Context(), cfg)
			cmd.SetContext(ctx)
			if root := cmd.Root(); root != nil && root != cmd {
				root.SetContext(ctx)
			}
			return nil
		},
	}

	cmd.SilenceUsage = true

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	cmd.PersistentFlags().StringVar(&workspaceDir, "workspace-dir", "", "Override scan history directory")
	cmd.PersistentFlags().BoolVar(&historyDisabled, "no-history", false, "Disable scan history persistence for this run")
	cmd.PersistentFlags().CountVarP(&verbosityCount, "verbosity", "v", "Increase logging verbosity (repeatable)")
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose logging (shows service layer logs)")

	config.BindFlags(cmd.PersistentFlags())

	cmd.AddGroup(&cobra.Group{ID: "scan", Title: "Scan Commands"})
	cmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands"})

	cmd.AddCommand(ScanCmd)
	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// setupLogging configures the global zerolog logger from the resolved log
// configuration and the verbosity flags.
//
// If explicit --verbose is set, show debug and above.
// Else use -v count: 0=>Error, 1=>Info, 2+=>Debug.
func setupLogging(cfg config.LogConfig, verbosityCount int, verbose bool) {
	if cfg.Format != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	switch {
	case verbosityCount <= 0:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case verbosityCount == 1:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}
