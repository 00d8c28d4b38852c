package synth

import "math"

const (
	// SeqSteps is the length of the tuning and volume sequencers.
	SeqSteps = 16
	// SyncSlots is the number of hard-sync slots.
	SyncSlots = 4
)

// Sequencer steps through 16 values at Frequency steps per time unit.
// With PingPong the traversal runs 0..15..1 instead of wrapping.
type Sequencer struct {
	Steps     [SeqSteps]float64
	Frequency float64
	PingPong  bool
}

// Step returns the step index active at pos, or -1 when the sequencer is off.
func (s *Sequencer) Step(pos float64) int {
	if s.Frequency <= 0 || pos < 0 {
		return -1
	}
	k := int64(math.Floor(pos * s.Frequency))
	if !s.PingPong {
		return int(k % SeqSteps)
	}
	const period = 2*SeqSteps - 2
	k %= period
	if k >= SeqSteps {
		k = period - k
	}
	return int(k)
}

// Value returns the step value active at pos.
func (s *Sequencer) Value(pos float64) (float64, bool) {
	i := s.Step(pos)
	if i < 0 {
		return 0, false
	}
	return s.Steps[i], true
}

// LFO is the slow secondary oscillator detuning the carrier by up to
// Depth*Tuning cents.
type LFO struct {
	Frequency float64
	Depth     float64
	Tuning    float64
}

// Cents returns the detune at time t in seconds.
func (l *LFO) Cents(t float64) float64 {
	if l.Depth == 0 || l.Tuning == 0 || l.Frequency <= 0 {
		return 0
	}
	return l.Depth * l.Tuning * math.Sin(2*math.Pi*l.Frequency*t)
}

// Vibrato is a pitch modulation in cents around a static Tuning offset.
type Vibrato struct {
	Gain         float64
	LFODepth     float64
	LFOFrequency float64
	Tuning       float64
}

// Cents returns the detune at time t in seconds.
func (v *Vibrato) Cents(t float64) float64 {
	c := v.Tuning
	if v.LFOFrequency > 0 {
		c += v.Gain * v.LFODepth * math.Sin(2*math.Pi*v.LFOFrequency*t)
	}
	return c
}

// SyncSlot resets the carrier phase to Phase (in frames of the carrier)
// once per carrier cycle, Attack*RelativeAttackFactor frames into it.
// A slot with a non-positive RelativeAttackFactor is off.
type SyncSlot struct {
	RelativeAttackFactor float64
	Attack               float64
	Phase                float64
}

// fires reports whether the slot resets on frame n of a carrier with period frames.
func (s *SyncSlot) fires(n uint64, period float64) bool {
	if s.RelativeAttackFactor <= 0 || period <= 0 {
		return false
	}
	at := s.Attack * s.RelativeAttackFactor
	cur := math.Floor((float64(n) - at) / period)
	if n == 0 {
		return at == 0
	}
	prev := math.Floor((float64(n-1) - at) / period)
	return cur != prev
}
