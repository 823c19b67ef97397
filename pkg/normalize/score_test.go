package normalize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScore_Present(t *testing.T) {
	require.Empty(t, Score{}.Present())
	require.Equal(t, []int{40}, Score{Desktop: intRef(40)}.Present())
	require.Equal(t, []int{30}, Score{Mobile: intRef(30)}.Present())
	require.Equal(t, []int{40, 30}, Score{Desktop: intRef(40), Mobile: intRef(30)}.Present())
}

func TestScore_Average(t *testing.T) {
	avg, ok := Score{Desktop: intRef(40), Mobile: intRef(30)}.Average()
	require.True(t, ok)
	require.InDelta(t, 35.0, avg, 1e-9)

	avg, ok = Score{Mobile: intRef(55)}.Average()
	require.True(t, ok)
	require.InDelta(t, 55.0, avg, 1e-9)

	_, ok = Score{}.Average()
	require.False(t, ok)
}

func TestScore_AverageInt_RoundsHalfUp(t *testing.T) {
	avg, ok := Score{Desktop: intRef(50), Mobile: intRef(51)}.AverageInt()
	require.True(t, ok)
	require.Equal(t, 51, avg, "50.5 rounds half up")
}

func TestScore_Equal_NilAndZeroDistinct(t *testing.T) {
	zero := Score{Desktop: intRef(0)}
	null := Score{}
	require.False(t, zero.Equal(null), "a zero score is not an unknown score")
	require.True(t, zero.Equal(Score{Desktop: intRef(0)}))
}
