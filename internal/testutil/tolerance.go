package testutil

import (
	"fmt"
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t at the first index where got and want
// differ by more than eps, or when their lengths differ.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	if i := firstIndex(got, func(i int, v float64) bool { return math.Abs(v-want[i]) > eps }); i >= 0 {
		t.Fatalf("[%d] = %v, want %v (eps %g)", i, got[i], want[i], eps)
	}
}

// RequireFinite fails t on the first NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	if i := firstIndex(data, func(_ int, v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }); i >= 0 {
		t.Fatalf("[%d] = %v, want finite", i, data[i])
	}
}

// RequireSilent fails t on the first non-zero sample.
func RequireSilent(t *testing.T, data []float64) {
	t.Helper()
	if i := firstIndex(data, func(_ int, v float64) bool { return v != 0 }); i >= 0 {
		t.Fatalf("[%d] = %v, want silence", i, data[i])
	}
}

// MaxAbsDiff returns the largest absolute difference between a and b.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("testutil: length mismatch %d != %d", len(a), len(b))
	}
	d := 0.0
	for i, v := range a {
		d = math.Max(d, math.Abs(v-b[i]))
	}
	return d, nil
}

func firstIndex(data []float64, bad func(int, float64) bool) int {
	for i, v := range data {
		if bad(i, v) {
			return i
		}
	}
	return -1
}
