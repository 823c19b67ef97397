package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sitevitals/sitevitals/cmd/sitevitals/internal/bind"
	"github.com/sitevitals/sitevitals/pkg/analyzer"
	"github.com/sitevitals/sitevitals/pkg/appctx"
	"github.com/sitevitals/sitevitals/pkg/config"
	"github.com/sitevitals/sitevitals/pkg/health"
	"github.com/sitevitals/sitevitals/pkg/output"
	"github.com/sitevitals/sitevitals/pkg/report"
	"github.com/sitevitals/sitevitals/pkg/scan"
)

// ScanCmd defines the 'scan' command for auditing one target site.
var ScanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Audit a website across all five analyzers",
	Long: `Dispatches the target URL to the fonts, SEO, performance, accessibility
and security analyzers concurrently, then aggregates their results into
one health report. Unreachable analyzers degrade the report instead of
failing the scan.`,
	GroupID: "scan",
	Args:    cobra.ExactArgs(1),
	RunE:    runScanCommand,
}

func runScanCommand(cmd *cobra.Command, args []string) error {
	out := setupOutputPipeline(cmd)

	logger := log.With().Str("command", "scan").Logger()

	cfg, ok := appctx.ConfigFrom(cmd.Context())
	if !ok {
		cfg = config.DefaultConfig()
	}

	params, err := bind.BindScanOptions(cmd, args[0])
	if err != nil {
		logger.Error().Err(err).Msg("Failed to bind scan options")
		out.Error(err)
		return err
	}

	out.Diag(output.LevelVerbose, "Initializing scan command", map[string]any{
		"target": params.TargetURL,
	})

	endpoints := cfg.Analyzers.Endpoints()
	if timeout, _ := cmd.Flags().GetInt("timeout"); timeout > 0 {
		for kind, ep := range endpoints {
			ep.Timeout = time.Duration(timeout) * time.Second
			endpoints[kind] = ep
		}
	}

	svc := scan.NewService(analyzer.NewHTTPClient(endpoints))

	if cfg.History.Enabled {
		backend, err := newStorageBackend(cfg)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to create storage backend, scan will not be persisted")
		} else if err := backend.Initialize(cmd.Context()); err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize storage, scan will not be persisted")
		} else {
			svc = svc.WithStorage(backend)
			defer func() {
				if err := backend.Close(); err != nil {
					logger.Warn().Err(err).Msg("Failed to close storage backend")
				}
			}()
		}
	}

	if progress, _ := cmd.Flags().GetBool("progress"); progress {
		svc = svc.WithProgressSink(&progressPrinter{
			logger: logger,
			out:    out,
			total:  len(analyzer.AllKinds()),
		})
	}

	format, _ := cmd.Flags().GetString("output")
	if format == "text" {
		out.Info(fmt.Sprintf("🔍 Scanning %s ...", params.TargetURL))
	}

	res, runErr := svc.Run(cmd.Context(), params)
	if runErr != nil {
		logger.Error().Err(runErr).Msg("Scan execution failed")
		out.Error(runErr)
		return runErr
	}

	return renderScanOutput(out, format, res)
}

func renderScanOutput(out output.Output, format string, res *scan.Result) error {
	for kind, reason := range res.Failures {
		out.Warning(fmt.Sprintf("%s analyzer failed: %s", kind.Title(), reason))
	}

	switch strings.ToLower(format) {
	case "json":
		_, err := report.NewJSONWriter(os.Stdout, report.WithPrettyPrint()).Write(res.Report)
		return err
	case "yaml":
		_, err := report.NewYAMLWriter(os.Stdout).Write(res.Report)
		return err
	case "markdown":
		_, err := report.NewMarkdownWriter(os.Stdout).Write(res.Report)
		return err
	default:
		printReportText(out, res.Report)
		return nil
	}
}

// printReportText renders the report through the output event stream: a
// summary table, the per-area scores, the ranked issues and the next
// step.
func printReportText(out output.Output, rep *scan.Report) {
	out.Table(
		[]string{"Metric", "Value"},
		[][]string{
			{"Target", rep.TargetURL},
			{"Duration", fmt.Sprintf("%.1fs", rep.DurationSeconds)},
			{"Overall Score", fmt.Sprintf("%d/100", rep.OverallScore)},
		},
	)

	scoreRows := make([][]string, 0, len(analyzer.AllKinds()))
	for _, kind := range analyzer.AllKinds() {
		score := rep.Scores[kind]
		scoreRows = append(scoreRows, []string{
			kind.Title(),
			formatDeviceScore(score.Desktop),
			formatDeviceScore(score.Mobile),
		})
	}
	out.Table([]string{"Area", "Desktop", "Mobile"}, scoreRows)

	if len(rep.TopIssues) == 0 {
		out.Info("No significant issues detected.")
	} else {
		out.Info("--- Top Issues ---")
		for i, issue := range rep.TopIssues {
			line := fmt.Sprintf("%d. [%s] %s (score %d)", i+1, issue.Severity, issue.Title, issue.Score)
			if issue.Severity == health.SeverityCritical {
				out.Warning(line)
			} else {
				out.Info(line)
			}
			out.Info("   " + issue.Impact)
		}
	}

	out.Info("")
	out.Info(rep.Summary)
	out.Info("➡ " + rep.NextStep.Text)
}

func formatDeviceScore(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

// progressPrinter forwards analyzer settle events to the logger and the
// output stream.
type progressPrinter struct {
	logger  zerolog.Logger
	out     output.Output
	total   int
	settled atomic.Int32
}

func (p *progressPrinter) OnEvent(ev scan.ProgressEvent) {
	entry := p.logger.Info().
		Str("analyzer", ev.Kind.String()).
		Str("status", ev.Status)
	if ev.Message != "" {
		entry = entry.Str("message", ev.Message)
	}
	entry.Msg("scan progress")

	if p.out == nil {
		return
	}
	current := int(p.settled.Add(1))
	icon := "✓"
	message := fmt.Sprintf("%s analyzer finished", ev.Kind.Title())
	if ev.Status == "failed" {
		icon = "✗"
		message = fmt.Sprintf("%s analyzer failed", ev.Kind.Title())
	}
	p.out.Progress(current, p.total, fmt.Sprintf("%s %s", icon, message))
}

func init() {
	ScanCmd.Flags().IntP("top", "n", 0, "Number of ranked issues to include (default 3)")
	ScanCmd.Flags().StringP("output", "o", "text", "Output format: text, json, yaml, markdown")
	ScanCmd.Flags().Int("timeout", 0, "Override per-analyzer timeout in seconds (default: from config)")
	ScanCmd.Flags().Bool("progress", false, "Print live progress updates while analyzers settle")
}
