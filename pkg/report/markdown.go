package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/sitevitals/sitevitals/pkg/analyzer"
	"github.com/sitevitals/sitevitals/pkg/health"
	"github.com/sitevitals/sitevitals/pkg/normalize"
	"github.com/sitevitals/sitevitals/pkg/scan"
)

// MarkdownWriter renders reports as GitHub-flavored Markdown, suitable
// for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter writing to output.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write renders the full report.
func (w *MarkdownWriter) Write(report *scan.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeScores(md, report)
	w.writeIssues(md, report)
	w.writeNextStep(md, report)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *scan.Report) {
	md.H1("Site Health Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + report.TargetURL + "`"},
			{"Scanned", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", fmt.Sprintf("%.1fs", report.DurationSeconds)},
			{"Overall Score", scoreBadge(report.OverallScore) + " **" + strconv.Itoa(report.OverallScore) + "/100**"},
		},
	})
	md.PlainText("")

	md.PlainText(report.Summary)
	md.PlainText("")
}

func (w *MarkdownWriter) writeScores(md *markdown.Markdown, report *scan.Report) {
	md.H2("Scores by Area")
	md.PlainText("")

	rows := make([][]string, 0, len(analyzer.AllKinds()))
	for _, kind := range analyzer.AllKinds() {
		score := report.Scores[kind]
		rows = append(rows, []string{
			kind.Title(),
			formatDevice(score.Desktop),
			formatDevice(score.Mobile),
			formatAverage(score),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Area", "Desktop", "Mobile", "Average"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, report *scan.Report) {
	md.H2("Top Issues")
	md.PlainText("")

	if len(report.TopIssues) == 0 {
		md.Tip("No significant issues detected.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.TopIssues))
	for i, issue := range report.TopIssues {
		rows[i] = []string{
			severityBadge(issue.Severity),
			issue.Title,
			strconv.Itoa(issue.Score),
			issue.Impact,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Issue", "Score", "Impact"},
		Rows:   rows,
	})
	md.PlainText("")

	if report.TopIssues[0].Severity == health.SeverityCritical {
		md.Cautionf("%d issue(s) are critical and deserve immediate attention.", criticalCount(report.TopIssues))
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeNextStep(md *markdown.Markdown, report *scan.Report) {
	md.H2("Recommended Next Step")
	md.PlainText("")
	md.PlainText(report.NextStep.Text)
	md.PlainText("")
}

func criticalCount(issues []health.Issue) int {
	n := 0
	for _, issue := range issues {
		if issue.Severity == health.SeverityCritical {
			n++
		}
	}
	return n
}

func formatDevice(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func formatAverage(score normalize.Score) string {
	avg, ok := score.AverageInt()
	if !ok {
		return "-"
	}
	return strconv.Itoa(avg)
}

func scoreBadge(score int) string {
	switch {
	case score >= 90:
		return "🟢"
	case score >= 75:
		return "🟡"
	case score >= 50:
		return "🟠"
	default:
		return "🔴"
	}
}

func severityBadge(severity health.Severity) string {
	if severity == health.SeverityCritical {
		return "🔴 Critical"
	}
	return "🟡 Warning"
}
