package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sitevitals/sitevitals/pkg/appctx"
	"github.com/sitevitals/sitevitals/pkg/config"
	"github.com/sitevitals/sitevitals/pkg/storage"
)

// NewHistoryCommand constructs the 'history' command group for browsing
// and pruning persisted scans.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Short:   "Browse and manage persisted scan history",
		GroupID: "core",
	}

	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryShowCommand())
	cmd.AddCommand(newHistoryPruneCommand())

	return cmd
}

func newHistoryListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List persisted scans, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := openBackend(cmd)
			if err != nil {
				return err
			}
			defer closeBackend(backend)

			status, _ := cmd.Flags().GetString("status")
			target, _ := cmd.Flags().GetString("target")
			limit, _ := cmd.Flags().GetInt("limit")

			records, err := backend.Scans().List(cmd.Context(), storage.Filter{
				Status: status,
				Target: target,
				Limit:  limit,
			})
			if err != nil {
				return fmt.Errorf("list scans: %w", err)
			}

			if len(records) == 0 {
				fmt.Println("No scans in history.")
				return nil
			}

			out := setupOutputPipeline(cmd)
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				overall := "-"
				if rec.Status == storage.StatusCompleted {
					overall = strconv.Itoa(rec.OverallScore)
				}
				rows = append(rows, []string{
					rec.ID,
					rec.TargetURL,
					rec.Status.String(),
					rec.StartedAt.Format("2006-01-02 15:04"),
					overall,
					strconv.Itoa(rec.IssueCount),
				})
			}
			out.Table([]string{"ID", "Target", "Status", "Started", "Score", "Issues"}, rows)
			return nil
		},
	}

	cmd.Flags().String("status", "", "Filter by status (pending, running, completed, failed)")
	cmd.Flags().String("target", "", "Filter by target URL substring")
	cmd.Flags().Int("limit", 20, "Maximum number of scans to list")
	return cmd
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <scan-id>",
		Short: "Print one persisted scan report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := openBackend(cmd)
			if err != nil {
				return err
			}
			defer closeBackend(backend)

			record, err := backend.Scans().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load scan: %w", err)
			}

			payload, err := backend.Scans().LoadReport(cmd.Context(), record.ID)
			if err != nil {
				return fmt.Errorf("load report for scan %s (status %s): %w", record.ID, record.Status, err)
			}
			_, err = os.Stdout.Write(append(payload, '\n'))
			return err
		},
	}
}

func newHistoryPruneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old scans according to the retention policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := openBackend(cmd)
			if err != nil {
				return err
			}
			defer closeBackend(backend)

			cfg, ok := appctx.ConfigFrom(cmd.Context())
			if !ok {
				cfg = config.DefaultConfig()
			}
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			result, err := backend.Prune(cmd.Context(), storage.PruneOptions{
				DryRun: dryRun,
				Retention: &storage.RetentionConfig{
					MaxScans:   cfg.History.MaxScans,
					MaxAgeDays: cfg.History.MaxAgeDays,
				},
			})
			if err != nil {
				return fmt.Errorf("prune history: %w", err)
			}

			for _, pruneErr := range result.Errors {
				log.Warn().Err(pruneErr).Msg("Prune error")
			}

			verb := "Deleted"
			if dryRun {
				verb = "Would delete"
			}
			fmt.Printf("%s %d scan(s).\n", verb, result.ScansDeleted)
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Report what would be deleted without deleting")
	return cmd
}

func openBackend(cmd *cobra.Command) (*storage.LocalBackend, error) {
	cfg, ok := appctx.ConfigFrom(cmd.Context())
	if !ok {
		cfg = config.DefaultConfig()
	}
	backend, err := newStorageBackend(cfg)
	if err != nil {
		return nil, fmt.Errorf("create storage backend: %w", err)
	}
	if err := backend.Initialize(cmd.Context()); err != nil {
		return nil, fmt.Errorf("initialize storage: %w", err)
	}
	return backend, nil
}

func closeBackend(backend *storage.LocalBackend) {
	if err := backend.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close storage backend")
	}
}
