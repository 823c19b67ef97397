package scan

import (
	"time"

	"github.com/sitevitals/sitevitals/pkg/analyzer"
	"github.com/sitevitals/sitevitals/pkg/health"
	"github.com/sitevitals/sitevitals/pkg/normalize"
)

// DefaultTopIssues is how many ranked issues a report carries. The sidebar
// surface may request more via Params.TopN; the ranking itself supports an
// arbitrary truncation limit.
const DefaultTopIssues = 3

// Report is the final product of one scan: every analyzer's normalized
// score, the overall health score, the ranked top issues and the composed
// summary. It is constructed once per scan and never mutated afterwards;
// a re-scan replaces the whole value.
type Report struct {
	TargetURL       string                           `json:"target_url"`
	StartedAt       time.Time                        `json:"started_at"`
	DurationSeconds float64                          `json:"duration_seconds"`
	Scores          map[analyzer.Kind]normalize.Score `json:"scores"`
	OverallScore    int                              `json:"overall_score"`
	TopIssues       []health.Issue                   `json:"top_issues"`
	NextStep        health.NextStep                  `json:"next_step"`
	Summary         string                           `json:"summary"`
}

// BuildReport runs the pure aggregation pipeline over settled analyzer
// outcomes: normalize each outcome, aggregate the overall score, extract
// and rank issues, then compose the summary.
//
// The function is deterministic: byte-identical outcomes produce a
// byte-identical report. The only timestamps involved are supplied by the
// caller.
func BuildReport(target string, startedAt time.Time, duration time.Duration, outcomes map[analyzer.Kind]analyzer.Outcome, topN int) *Report {
	if topN <= 0 {
		topN = DefaultTopIssues
	}

	scores := make(map[analyzer.Kind]normalize.Score, len(outcomes))
	for _, kind := range analyzer.AllKinds() {
		scores[kind] = normalize.Normalize(kind, outcomes[kind])
	}

	overall := health.Overall(scores)
	top := health.Rank(health.ExtractIssues(scores), topN)
	summary := health.Compose(overall, scores, top)

	return &Report{
		TargetURL:       target,
		StartedAt:       startedAt,
		DurationSeconds: duration.Seconds(),
		Scores:          scores,
		OverallScore:    overall,
		TopIssues:       top,
		NextStep:        summary.NextStep,
		Summary:         summary.Narrative,
	}
}
