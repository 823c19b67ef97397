// Package health reduces the five normalized analyzer scores into one
// overall health score, a severity-ranked issue list and a narrative
// summary. Everything in this package is a pure function of its inputs.
package health

import (
	"sort"

	"github.com/sitevitals/sitevitals/pkg/analyzer"
	"github.com/sitevitals/sitevitals/pkg/normalize"
)

// Score thresholds. Scores at or above issueThreshold generate no issue.
const (
	issueThreshold    = 75
	criticalThreshold = 50
)

// Issue is one actionable problem detected in a scan. Immutable once
// extracted; not persisted beyond one scan's lifetime.
type Issue struct {
	Kind     analyzer.Kind `json:"kind"`
	Title    string        `json:"title"`
	Severity Severity      `json:"severity"`
	Impact   string        `json:"impact"`
	Score    int           `json:"score"`
	DeepLink string        `json:"deep_link"`
}

// issueInfo holds the static per-kind issue metadata: display title,
// impact text for each severity tier, report deep link and the severity
// ceiling for kinds that never escalate.
type issueInfo struct {
	Title          string
	WarningImpact  string
	CriticalImpact string
	DeepLink       string
	MaxSeverity    Severity
}

// issueInfoMapping is the single source of truth for issue presentation.
// Impact strings are fixed pairs selected by the critical threshold, not
// templated from scores, so rankings stay explainable.
var issueInfoMapping = map[analyzer.Kind]issueInfo{
	analyzer.KindFonts: {
		Title:         "Too many font families",
		WarningImpact: "Extra font families add download weight and make the page feel inconsistent.",
		// A sub-optimal font count is never severe; fonts cap at Warning.
		CriticalImpact: "Extra font families add download weight and make the page feel inconsistent.",
		DeepLink:       "/report#fonts",
		MaxSeverity:    SeverityWarning,
	},
	analyzer.KindSEO: {
		Title:          "Poor search engine visibility",
		WarningImpact:  "Search engines are missing signals they need to rank this site well.",
		CriticalImpact: "This site is close to invisible in search results, losing organic traffic every day.",
		DeepLink:       "/report#seo",
		MaxSeverity:    SeverityCritical,
	},
	analyzer.KindPerformance: {
		Title:          "Slow page load speed",
		WarningImpact:  "Pages load slower than visitors expect, which hurts engagement and conversions.",
		CriticalImpact: "Pages load so slowly that visitors abandon the site before it renders.",
		DeepLink:       "/report#performance",
		MaxSeverity:    SeverityCritical,
	},
	analyzer.KindAccessibility: {
		Title:          "Accessibility barriers",
		WarningImpact:  "Some visitors using assistive technology will struggle with parts of this site.",
		CriticalImpact: "This site is unusable for many visitors with disabilities and risks compliance exposure.",
		DeepLink:       "/report#accessibility",
		MaxSeverity:    SeverityCritical,
	},
	analyzer.KindSecurity: {
		Title:          "Security weaknesses",
		WarningImpact:  "Missing protections leave the site more exposed than it needs to be.",
		CriticalImpact: "Serious security gaps put visitor data and the site's reputation at risk.",
		DeepLink:       "/report#security",
		MaxSeverity:    SeverityCritical,
	},
}

// ExtractIssues emits at most one issue per analyzer kind, in canonical
// kind order, for every kind whose device average falls below the issue
// threshold.
//
// A kind with no present score produces no issue: absence of data is not
// treated as a problem.
func ExtractIssues(scores map[analyzer.Kind]normalize.Score) []Issue {
	issues := make([]Issue, 0, len(issueInfoMapping))

	for _, kind := range analyzer.AllKinds() {
		info, ok := issueInfoMapping[kind]
		if !ok {
			continue
		}
		avg, ok := scores[kind].AverageInt()
		if !ok || avg >= issueThreshold {
			continue
		}

		severity := SeverityWarning
		impact := info.WarningImpact
		if avg < criticalThreshold {
			impact = info.CriticalImpact
			if info.MaxSeverity >= SeverityCritical {
				severity = SeverityCritical
			}
		}

		issues = append(issues, Issue{
			Kind:     kind,
			Title:    info.Title,
			Severity: severity,
			Impact:   impact,
			Score:    avg,
			DeepLink: info.DeepLink,
		})
	}

	return issues
}

// Rank orders issues by severity (critical first), then ascending score
// (worse first), truncated to at most limit entries. Ties preserve the
// extraction order. The limit is a parameter because different surfaces
// request different depths (the report shows 3, the sidebar up to 5).
func Rank(issues []Issue, limit int) []Issue {
	ranked := make([]Issue, len(issues))
	copy(ranked, issues)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Severity != ranked[j].Severity {
			return ranked[i].Severity > ranked[j].Severity
		}
		return ranked[i].Score < ranked[j].Score
	})

	if limit < 0 {
		limit = 0
	}
	if limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked
}
