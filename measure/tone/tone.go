// Package tone measures the basic properties of a rendered tone: its
// fundamental frequency and level, DC offset, RMS and peak.
package tone

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-recall/dsp/window"
)

const maxFFTSize = 1 << 16

// ErrTooShort is returned for signals shorter than two samples.
var ErrTooShort = errors.New("tone: signal too short")

// Config holds analysis parameters.
type Config struct {
	SampleRate float64
	// FFTSize must be a power of two. Zero selects the largest power of two
	// not exceeding the signal length, capped at 65536.
	FFTSize int
	// Window applied before the FFT. The zero value selects Hann.
	Window window.Type
}

// Result holds tone measurements.
type Result struct {
	FundamentalFreq  float64
	FundamentalLevel float64
	DC               float64
	RMS              float64
	Peak             float64
}

// Analyze measures signal. The spectrum is taken over the first FFTSize
// samples with cfg.Window applied; level statistics cover the whole signal.
func Analyze(signal []float64, cfg Config) (Result, error) {
	if len(signal) < 2 {
		return Result{}, ErrTooShort
	}
	if cfg.SampleRate <= 0 {
		return Result{}, fmt.Errorf("tone: invalid sample rate %v", cfg.SampleRate)
	}

	var res Result
	sum, sumSq := 0.0, 0.0
	for _, v := range signal {
		sum += v
		sumSq += v * v
		res.Peak = math.Max(res.Peak, math.Abs(v))
	}
	res.DC = sum / float64(len(signal))
	res.RMS = math.Sqrt(sumSq / float64(len(signal)))

	n := cfg.FFTSize
	if n <= 0 {
		n = 1
		for n*2 <= len(signal) && n*2 <= maxFFTSize {
			n *= 2
		}
	}
	if n&(n-1) != 0 {
		return Result{}, fmt.Errorf("tone: fft size %d is not a power of two", n)
	}
	if n < 4 {
		return res, nil
	}

	winType := cfg.Window
	if winType == window.TypeRectangular {
		winType = window.TypeHann
	}
	win := window.Generate(winType, n, window.WithPeriodic())
	src := make([]float64, n)
	copy(src, signal)
	frame := make([]float64, n)
	vecmath.MulBlock(frame, src, win)

	in := make([]complex128, n)
	for i, v := range frame {
		in[i] = complex(v, 0)
	}
	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return Result{}, fmt.Errorf("tone: fft plan: %w", err)
	}
	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return Result{}, fmt.Errorf("tone: fft: %w", err)
	}

	bins := n/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for k := range bins {
		re[k] = real(out[k])
		im[k] = imag(out[k])
	}
	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)

	peak := 1
	for k := 2; k < bins; k++ {
		if mag[k] > mag[peak] {
			peak = k
		}
	}
	if mag[peak] == 0 {
		return res, nil
	}

	delta := 0.0
	if peak > 0 && peak < bins-1 {
		a, b, c := logMag(mag[peak-1]), logMag(mag[peak]), logMag(mag[peak+1])
		if d := a - 2*b + c; d != 0 {
			delta = 0.5 * (a - c) / d
		}
	}

	gain := window.Analyze(win).CoherentGain
	res.FundamentalFreq = (float64(peak) + delta) * cfg.SampleRate / float64(n)
	res.FundamentalLevel = 2 * mag[peak] / (gain * float64(n))
	return res, nil
}

func logMag(m float64) float64 {
	return math.Log(math.Max(m, 1e-300))
}
