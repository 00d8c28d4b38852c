package note

import (
	"math"
	"testing"
)

func TestFrameCount(t *testing.T) {
	n := Note{X0: 2, X1: 6}
	tests := []struct {
		name       string
		delay      float64
		bufferSize int
		want       int
	}{
		{name: "integral delay", delay: 12, bufferSize: 500, want: 24000},
		{name: "fractional delay", delay: 10.7666, bufferSize: 512, want: 22050},
		{name: "zero delay", delay: 0, bufferSize: 512, want: 0},
		{name: "zero buffer", delay: 12, bufferSize: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.FrameCount(tt.delay, tt.bufferSize); got != tt.want {
				t.Fatalf("FrameCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStepsInverted(t *testing.T) {
	n := Note{X0: 4, X1: 2}
	if n.Steps() != 0 {
		t.Fatalf("Steps() = %d, want 0", n.Steps())
	}
	if n.FrameCount(12, 500) != 0 {
		t.Fatal("inverted note must have no frames")
	}
}

func TestStartFrame(t *testing.T) {
	n := Note{X0: 3, X1: 4}
	if got := n.StartFrame(12, 500); got != 18000 {
		t.Fatalf("StartFrame() = %d, want 18000", got)
	}
}

func TestFrequency(t *testing.T) {
	if got := Frequency(A4Key); got != 440 {
		t.Fatalf("Frequency(A4) = %v, want 440", got)
	}
	if got := Frequency(A4Key + 12); math.Abs(got-880) > 1e-9 {
		t.Fatalf("Frequency(A5) = %v, want 880", got)
	}
	n := Note{Y: A4Key - 12}
	if got := n.Frequency(); math.Abs(got-220) > 1e-9 {
		t.Fatalf("Note.Frequency() = %v, want 220", got)
	}
}
