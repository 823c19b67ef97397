package health

import (
	"fmt"
	"sort"

	"github.com/sitevitals/sitevitals/pkg/analyzer"
	"github.com/sitevitals/sitevitals/pkg/normalize"
)

// genericNextStepLink is the follow-up destination when a scan found
// nothing actionable.
const genericNextStepLink = "/tools/competitor-analysis"

// NextStep is the single recommended action derived from the ranked
// issues, carrying the deep link of the issue it points at.
type NextStep struct {
	Text string `json:"text"`
	Link string `json:"link"`
}

// Summary is the natural-language assessment of one scan.
type Summary struct {
	Narrative string   `json:"narrative"`
	NextStep  NextStep `json:"next_step"`
}

// kindAverage pairs an analyzer kind with its rounded device average,
// used to pick the weakest and strongest areas.
type kindAverage struct {
	kind analyzer.Kind
	avg  int
}

// Compose derives the narrative and next step from the overall score, the
// per-analyzer scores and the already-ranked top issues.
//
// Compose never fails: every branch, including "no analyzer returned any
// score", has a defined output.
func Compose(overall int, scores map[analyzer.Kind]normalize.Score, top []Issue) Summary {
	return Summary{
		Narrative: narrative(overall, scores),
		NextStep:  nextStep(top),
	}
}

// narrative is a four-bucket step function on the overall score. The
// weakest and strongest areas come from sorting all kinds with a present
// average ascending; ties keep canonical kind order.
func narrative(overall int, scores map[analyzer.Kind]normalize.Score) string {
	averages := presentAverages(scores)

	switch {
	case overall >= 90:
		if len(averages) == 0 {
			return "Your site is in excellent shape across the board."
		}
		strongest := averages[len(averages)-1]
		return fmt.Sprintf("Your site is in excellent shape. %s is your strongest area.",
			strongest.kind.Title())

	case overall >= 75:
		if len(averages) == 0 {
			return "Your site is performing well overall."
		}
		weakest := averages[0]
		return fmt.Sprintf("Your site is performing well overall, but %s could use some attention.",
			weakest.kind.Title())

	case overall >= 50:
		if len(averages) == 0 {
			return "Your site needs work in several areas."
		}
		weakest := averages[0]
		return fmt.Sprintf("Your site needs work in several areas. Improving %s should be the priority.",
			weakest.kind.Title())

	default:
		if len(averages) == 0 {
			return "Your site could not be scored: none of the analyzers returned a usable result. " +
				"Re-run the scan once the site is reachable."
		}
		weakest := averages[0]
		return fmt.Sprintf("Your site has critical issues that need immediate attention. %s is the most urgent.",
			weakest.kind.Title())
	}
}

// nextStep picks the single recommended action. An empty issue list gets a
// generic follow-up with no severity framing; otherwise the top issue is
// phrased by its severity and carries its own deep link.
func nextStep(top []Issue) NextStep {
	if len(top) == 0 {
		return NextStep{
			Text: "Run a competitive analysis to see how your site stacks up against similar sites.",
			Link: genericNextStepLink,
		}
	}

	first := top[0]
	if first.Severity == SeverityCritical {
		return NextStep{
			Text: fmt.Sprintf("Fix %q first. It is the highest-impact improvement you can make.", first.Title),
			Link: first.DeepLink,
		}
	}
	return NextStep{
		Text: fmt.Sprintf("Review and improve %q to boost your overall score.", first.Title),
		Link: first.DeepLink,
	}
}

// presentAverages lists the kinds with a present average, sorted ascending
// by average with canonical kind order breaking ties.
func presentAverages(scores map[analyzer.Kind]normalize.Score) []kindAverage {
	averages := make([]kindAverage, 0, len(scores))
	for _, kind := range analyzer.AllKinds() {
		if avg, ok := scores[kind].AverageInt(); ok {
			averages = append(averages, kindAverage{kind: kind, avg: avg})
		}
	}
	sort.SliceStable(averages, func(i, j int) bool {
		return averages[i].avg < averages[j].avg
	})
	return averages
}
