package normalize

import "math"

// Score is the analyzer-shape-independent representation of one analyzer's
// result: a desktop/mobile pair of nullable 0-100 values.
//
// Both fields are independently nullable. Nil means "unknown" and is never
// conflated with 0, which is a valid (critically bad) score.
type Score struct {
	Desktop *int `json:"desktop"`
	Mobile  *int `json:"mobile"`
}

// Present returns the non-nil device values, desktop first.
func (s Score) Present() []int {
	values := make([]int, 0, 2)
	if s.Desktop != nil {
		values = append(values, *s.Desktop)
	}
	if s.Mobile != nil {
		values = append(values, *s.Mobile)
	}
	return values
}

// Average returns the mean of the present device values.
// The second return value is false when neither device has a score.
func (s Score) Average() (float64, bool) {
	values := s.Present()
	if len(values) == 0 {
		return 0, false
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values)), true
}

// AverageInt returns the present-value mean rounded half up.
func (s Score) AverageInt() (int, bool) {
	avg, ok := s.Average()
	if !ok {
		return 0, false
	}
	return roundHalfUp(avg), true
}

// Equal compares two scores by value, treating nil and 0 as distinct.
func (s Score) Equal(other Score) bool {
	return intPtrEqual(s.Desktop, other.Desktop) && intPtrEqual(s.Mobile, other.Mobile)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func intRef(v int) *int {
	return &v
}
