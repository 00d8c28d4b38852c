// Package note describes the composition events consumed by the envelope
// and synth kernels.
package note

import "math"

// Complex is a (duration fraction, amplitude delta) pair. For Note.Ratio
// the imaginary part holds the baseline amplitude.
type Complex struct {
	Real float64 `json:"real"`
	Imag float64 `json:"imag"`
}

// Note is one scheduled event. X0 and X1 are in sequencer steps, Y is the key.
// Notes are read-only once scheduled.
type Note struct {
	X0 uint64 `json:"x0"`
	X1 uint64 `json:"x1"`
	Y  int    `json:"y"`

	Attack  Complex `json:"attack"`
	Decay   Complex `json:"decay"`
	Sustain Complex `json:"sustain"`
	Release Complex `json:"release"`
	Ratio   Complex `json:"ratio"`
}

// Steps returns the note length in sequencer steps, 0 for inverted notes.
func (n *Note) Steps() uint64 {
	if n.X1 <= n.X0 {
		return 0
	}
	return n.X1 - n.X0
}

// FrameCount returns the note length in frames for a transport running
// delay ticks per step and bufferSize frames per tick.
func (n *Note) FrameCount(delay float64, bufferSize int) int {
	if delay <= 0 || bufferSize <= 0 {
		return 0
	}
	return int(math.Round(float64(n.Steps()) * delay * float64(bufferSize)))
}

// StartFrame returns the absolute frame at which the note begins.
func (n *Note) StartFrame(delay float64, bufferSize int) int {
	if delay <= 0 || bufferSize <= 0 {
		return 0
	}
	return int(math.Round(float64(n.X0) * delay * float64(bufferSize)))
}

// A4Key is the key that sounds at 440 Hz.
const A4Key = 57

// Frequency returns the equal-tempered frequency of key in Hz.
func Frequency(key int) float64 {
	return 440 * math.Exp2(float64(key-A4Key)/12)
}

// Frequency returns the frequency of the note key.
func (n *Note) Frequency() float64 {
	return Frequency(n.Y)
}
