package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 48000, 1.0, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}
	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
	for i, v := range s {
		if v < -1 || v > 1 {
			t.Fatalf("s[%d] = %v out of range", i, v)
		}
	}
}

func TestDCAndOnes(t *testing.T) {
	for i, v := range DC(0.25, 4) {
		if v != 0.25 {
			t.Fatalf("DC[%d] = %v, want 0.25", i, v)
		}
	}
	if got := Ones(3); len(got) != 3 || got[2] != 1 {
		t.Fatalf("Ones(3) = %v", got)
	}
}

func TestConcat(t *testing.T) {
	got := Concat([]float64{1}, nil, []float64{2, 3})
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Concat() = %v", got)
	}
}

func TestMean(t *testing.T) {
	if got := Mean([]float64{1, -1, 3, 1}); got != 1 {
		t.Fatalf("Mean() = %v, want 1", got)
	}
	if got := Mean(nil); got != 0 {
		t.Fatalf("Mean(nil) = %v, want 0", got)
	}
}
