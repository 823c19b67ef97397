package health

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sitevitals/sitevitals/pkg/analyzer"
	"github.com/sitevitals/sitevitals/pkg/normalize"
)

func score(desktop, mobile int) normalize.Score {
	return normalize.Score{Desktop: &desktop, Mobile: &mobile}
}

func desktopOnly(v int) normalize.Score {
	return normalize.Score{Desktop: &v}
}

func TestOverall_MeanOfPresentValues(t *testing.T) {
	scores := map[analyzer.Kind]normalize.Score{
		analyzer.KindFonts: score(90, 90),
		analyzer.KindSEO:   score(80, 80),
	}
	require.Equal(t, 85, Overall(scores))
}

func TestOverall_DeviceValuesCountIndividually(t *testing.T) {
	// One analyzer contributing both devices counts twice:
	// (40 + 30 + 80) / 3 = 50.
	scores := map[analyzer.Kind]normalize.Score{
		analyzer.KindPerformance: score(40, 30),
		analyzer.KindSEO:         desktopOnly(80),
	}
	require.Equal(t, 50, Overall(scores))
}

func TestOverall_NullsExcludedNotZeroed(t *testing.T) {
	// A failed analyzer shrinks the sample instead of dragging the mean.
	scores := map[analyzer.Kind]normalize.Score{
		analyzer.KindSEO:      score(90, 90),
		analyzer.KindSecurity: {},
	}
	require.Equal(t, 90, Overall(scores))
}

func TestOverall_SingleValue(t *testing.T) {
	// The mean of exactly one present value is that value.
	scores := map[analyzer.Kind]normalize.Score{
		analyzer.KindSecurity: desktopOnly(82),
	}
	require.Equal(t, 82, Overall(scores))
}

func TestOverall_AllNullIsZero(t *testing.T) {
	scores := map[analyzer.Kind]normalize.Score{}
	for _, kind := range analyzer.AllKinds() {
		scores[kind] = normalize.Score{}
	}
	require.Equal(t, 0, Overall(scores))
	require.Equal(t, 0, Overall(nil))
}

func TestOverall_RoundsHalfUp(t *testing.T) {
	// (80 + 81) / 2 = 80.5 -> 81.
	scores := map[analyzer.Kind]normalize.Score{
		analyzer.KindSEO:   desktopOnly(80),
		analyzer.KindFonts: desktopOnly(81),
	}
	require.Equal(t, 81, Overall(scores))
}
