package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	d, err := MaxAbsDiff([]float64{0.5, -2, 3}, []float64{0.5, -1.25, 3})
	if err != nil {
		t.Fatalf("MaxAbsDiff: %v", err)
	}
	if d != 0.75 {
		t.Fatalf("MaxAbsDiff = %v, want 0.75", d)
	}
	if _, err := MaxAbsDiff(nil, []float64{1}); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestFirstIndex(t *testing.T) {
	data := []float64{0, 0, math.NaN(), 1}
	if i := firstIndex(data, func(_ int, v float64) bool { return v != 0 }); i != 2 {
		t.Fatalf("firstIndex = %d, want 2", i)
	}
	if i := firstIndex(data[:2], func(_ int, v float64) bool { return v != 0 }); i != -1 {
		t.Fatalf("firstIndex = %d, want -1", i)
	}
}

func TestRequireHelpersPass(t *testing.T) {
	RequireSliceNearlyEqual(t, []float64{1, -2}, []float64{1 + 1e-13, -2}, 1e-12)
	RequireFinite(t, []float64{0, -1e300, 1e300})
	RequireSilent(t, []float64{0, 0, 0})
}
