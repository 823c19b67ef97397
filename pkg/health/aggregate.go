package health

import (
	"math"

	"github.com/sitevitals/sitevitals/pkg/analyzer"
	"github.com/sitevitals/sitevitals/pkg/normalize"
)

// Overall computes the single overall health score: the arithmetic mean of
// every present desktop and mobile value across all analyzer kinds,
// rounded half up.
//
// An analyzer contributing both device values counts twice; an analyzer
// contributing neither is excluded entirely rather than treated as zero.
// Failed analyzers therefore shrink the sample instead of dragging the
// score down. With no present values at all the overall score is 0.
func Overall(scores map[analyzer.Kind]normalize.Score) int {
	sum := 0
	count := 0
	for _, kind := range analyzer.AllKinds() {
		for _, v := range scores[kind].Present() {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return int(math.Floor(float64(sum)/float64(count) + 0.5))
}
