package synth

import "math"

// Waveform is the oscillator shape.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSawtooth
	WaveTriangle
	WaveSquare
	WaveImpulse
)

var waveformNames = []string{"sine", "sawtooth", "triangle", "square", "impulse"}

func (w Waveform) String() string {
	if w < 0 || int(w) >= len(waveformNames) {
		return "invalid"
	}
	return waveformNames[w]
}

// ParseWaveform returns the waveform named by Waveform.String.
func ParseWaveform(name string) (Waveform, bool) {
	for i, n := range waveformNames {
		if n == name {
			return Waveform(i), true
		}
	}
	return 0, false
}

// Waveforms lists every supported shape.
func Waveforms() []Waveform {
	return []Waveform{WaveSine, WaveSawtooth, WaveTriangle, WaveSquare, WaveImpulse}
}

// value returns the waveform at phase in [0, 1). inc is the phase advance
// per frame; the impulse fires on the frame nearest to each cycle start.
func (w Waveform) value(phase, inc float64) float64 {
	switch w {
	case WaveSine:
		return math.Sin(2 * math.Pi * phase)
	case WaveSawtooth:
		return 2*phase - 1
	case WaveTriangle:
		if phase < 0.5 {
			return 4*phase - 1
		}
		return 3 - 4*phase
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveImpulse:
		if phase < inc/2 || phase >= 1-inc/2 {
			return 1
		}
		return 0
	default:
		return 0
	}
}
