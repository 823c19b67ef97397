package scan

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sitevitals/sitevitals/pkg/analyzer"
	"github.com/sitevitals/sitevitals/pkg/health"
)

var reportStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func allFailedOutcomes() map[analyzer.Kind]analyzer.Outcome {
	outcomes := make(map[analyzer.Kind]analyzer.Outcome)
	for _, kind := range analyzer.AllKinds() {
		outcomes[kind] = analyzer.Fail(kind, "connection refused")
	}
	return outcomes
}

func TestBuildReport_AllAnalyzersFailed(t *testing.T) {
	report := BuildReport("https://example.com", reportStart, 3*time.Second, allFailedOutcomes(), 0)

	require.Equal(t, 0, report.OverallScore)
	require.Empty(t, report.TopIssues)
	require.Contains(t, report.Summary, "could not be scored")
	require.Equal(t, "/tools/competitor-analysis", report.NextStep.Link)

	// Every kind still appears in the score map, as null.
	require.Len(t, report.Scores, len(analyzer.AllKinds()))
	for kind, score := range report.Scores {
		require.Nil(t, score.Desktop, "kind %s", kind)
		require.Nil(t, score.Mobile, "kind %s", kind)
	}
}

func TestBuildReport_SingleSecurityScore(t *testing.T) {
	outcomes := allFailedOutcomes()
	outcomes[analyzer.KindSecurity] = analyzer.Succeed(analyzer.KindSecurity, map[string]any{
		"overallScore": 82.0,
	})

	report := BuildReport("https://example.com", reportStart, time.Second, outcomes, 0)

	require.Equal(t, 82, report.OverallScore, "mean of exactly one present value")
	require.Empty(t, report.TopIssues, "82 is above the issue threshold")
}

func TestBuildReport_RankingPlacesCriticalFirst(t *testing.T) {
	outcomes := allFailedOutcomes()
	outcomes[analyzer.KindSEO] = analyzer.Succeed(analyzer.KindSEO, map[string]any{"score": 60.0})
	outcomes[analyzer.KindAccessibility] = analyzer.Succeed(analyzer.KindAccessibility, map[string]any{"score": 40.0})

	report := BuildReport("https://example.com", reportStart, time.Second, outcomes, 0)

	require.Len(t, report.TopIssues, 2)
	require.Equal(t, analyzer.KindAccessibility, report.TopIssues[0].Kind)
	require.Equal(t, health.SeverityCritical, report.TopIssues[0].Severity)
	require.Equal(t, analyzer.KindSEO, report.TopIssues[1].Kind)
	require.Equal(t, health.SeverityWarning, report.TopIssues[1].Severity)
}

func TestBuildReport_TopNDefaultAndOverride(t *testing.T) {
	outcomes := make(map[analyzer.Kind]analyzer.Outcome)
	for _, kind := range analyzer.AllKinds() {
		outcomes[kind] = analyzer.Succeed(kind, map[string]any{
			"score":       10.0,
			"total_fonts": 0.0,
		})
	}

	require.Len(t, BuildReport("https://example.com", reportStart, time.Second, outcomes, 0).TopIssues, DefaultTopIssues)
	require.Len(t, BuildReport("https://example.com", reportStart, time.Second, outcomes, 5).TopIssues, 5)
}

func TestBuildReport_Idempotent(t *testing.T) {
	outcomes := allFailedOutcomes()
	outcomes[analyzer.KindPerformance] = analyzer.Succeed(analyzer.KindPerformance, map[string]any{
		"results": map[string]any{
			"desktop": map[string]any{"performanceScore": 40.0},
			"mobile":  map[string]any{"performanceScore": 30.0},
		},
	})

	first := BuildReport("https://example.com", reportStart, 3*time.Second, outcomes, 3)
	second := BuildReport("https://example.com", reportStart, 3*time.Second, outcomes, 3)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	require.Equal(t, string(firstJSON), string(secondJSON),
		"byte-identical outcomes produce byte-identical reports")
}

func TestBuildReport_CarriesCallerTimestamps(t *testing.T) {
	report := BuildReport("https://example.com", reportStart, 2500*time.Millisecond, allFailedOutcomes(), 0)

	require.True(t, report.StartedAt.Equal(reportStart))
	require.InDelta(t, 2.5, report.DurationSeconds, 1e-9)
	require.Equal(t, "https://example.com", report.TargetURL)
}
