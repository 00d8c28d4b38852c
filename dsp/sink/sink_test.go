package sink

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep"

	"github.com/cwbudde/algo-recall/dsp/core"
	"github.com/cwbudde/algo-recall/dsp/recycling"
	"github.com/cwbudde/algo-recall/dsp/scope"
	"github.com/cwbudde/algo-recall/internal/testutil"
)

func testSignal(samples []float64, advanced int) *recycling.AudioSignal {
	cfg := core.ApplyProcessorOptions(core.WithBufferSize(4))
	var a scope.Allocator
	sig := recycling.NewSignal(cfg, scope.RecallID{Group: a.NewRoot()}, samples)
	for range advanced {
		sig.Advance()
	}
	return sig
}

func left(samples [][2]float64) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		if s[0] != s[1] {
			return nil
		}
		out[i] = s[0]
	}
	return out
}

func TestStreamerReadsAdvancedFrames(t *testing.T) {
	s := NewStreamer(testSignal([]float64{1, 2, 3, 4, 5, 6}, 2))

	buf := make([][2]float64, 4)
	n, ok := s.Stream(buf)
	if n != 4 || !ok {
		t.Fatalf("Stream() = %d, %v", n, ok)
	}
	testutil.RequireSliceNearlyEqual(t, left(buf[:n]), []float64{1, 2, 3, 4}, 0)

	n, ok = s.Stream(buf)
	if n != 2 || !ok {
		t.Fatalf("Stream() = %d, %v", n, ok)
	}
	testutil.RequireSliceNearlyEqual(t, left(buf[:n]), []float64{5, 6}, 0)

	if n, ok = s.Stream(buf); n != 0 || ok {
		t.Fatalf("Stream() past end = %d, %v", n, ok)
	}
	if s.Underruns != 0 || s.Position() != 6 || s.Len() != 6 {
		t.Fatalf("underruns=%d position=%d len=%d", s.Underruns, s.Position(), s.Len())
	}
}

func TestStreamerUnderrun(t *testing.T) {
	s := NewStreamer(testSignal([]float64{1, 2, 3, 4, 5, 6}, 1))
	buf := make([][2]float64, 8)
	n, ok := s.Stream(buf)
	if n != 6 || !ok {
		t.Fatalf("Stream() = %d, %v", n, ok)
	}
	testutil.RequireSliceNearlyEqual(t, left(buf[:n]), []float64{1, 2, 3, 4, 0, 0}, 0)
	if s.Underruns != 2 {
		t.Fatalf("Underruns = %d, want 2", s.Underruns)
	}
}

func TestStreamerMixesSignals(t *testing.T) {
	s := NewStreamer(
		testSignal([]float64{1, 1, 1, 1, 1, 1}, 2),
		testSignal([]float64{0.5, 0.5, 0.5}, 1),
	)
	got := make([][2]float64, 6)
	n, _ := s.Stream(got)
	testutil.RequireSliceNearlyEqual(t, left(got[:n]), []float64{1.5, 1.5, 1.5, 1, 1, 1}, 0)
	if s.Underruns != 0 {
		t.Fatalf("Underruns = %d, want 0", s.Underruns)
	}
}

func TestStreamerWithBeepTake(t *testing.T) {
	s := beep.Take(3, NewStreamer(testSignal([]float64{1, 2, 3, 4}, 1)))
	buf := make([][2]float64, 8)
	n, _ := s.Stream(buf)
	testutil.RequireSliceNearlyEqual(t, left(buf[:n]), []float64{1, 2, 3}, 0)
}

func TestMixdown(t *testing.T) {
	got := Mixdown(
		testSignal([]float64{1, 2, 3}, 0),
		testSignal([]float64{1, 1, 1, 1, 1}, 0),
	)
	testutil.RequireSliceNearlyEqual(t, got, []float64{2, 3, 4, 1, 1}, 0)
}

func TestWriteWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	samples := testutil.DeterministicSine(440, 8000, 0.5, 10)
	if err := WriteWAV(f, 8000, core.FormatS16, samples); err != nil {
		t.Fatalf("WriteWAV() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 44+2*len(samples) {
		t.Fatalf("file size = %d, want %d", len(data), 44+2*len(samples))
	}
	if !bytes.Equal(data[:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		t.Fatalf("bad header % x", data[:12])
	}

	if err := WriteWAV(f, 0, core.FormatS16, samples); err == nil {
		t.Fatal("zero sample rate accepted")
	}
}

func TestPrecision(t *testing.T) {
	cases := map[core.Format]int{core.FormatS8: 1, core.FormatS16: 2, core.FormatS24: 3, core.FormatDouble: 3}
	for f, want := range cases {
		if got := Precision(f); got != want {
			t.Fatalf("Precision(%s) = %d, want %d", f, got, want)
		}
	}
}

func TestFromSamples(t *testing.T) {
	s := FromSamples([]float64{0.25, -0.25, 1})
	buf := make([][2]float64, 2)
	n, ok := s.Stream(buf)
	if n != 2 || !ok {
		t.Fatalf("Stream() = %d, %v", n, ok)
	}
	testutil.RequireSliceNearlyEqual(t, left(buf[:n]), []float64{0.25, -0.25}, 0)
	n, _ = s.Stream(buf)
	if n != 1 || buf[0][1] != 1 {
		t.Fatalf("Stream() tail = %d %v", n, buf[0])
	}
	if n, ok = s.Stream(buf); n != 0 || ok {
		t.Fatalf("Stream() past end = %d, %v", n, ok)
	}
}
