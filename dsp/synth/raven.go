package synth

import (
	"math"

	"github.com/cwbudde/algo-recall/dsp/core"
)

// Raven holds the parameters and generator state of one raven synth voice.
//
// Parameters may be changed between calls. Offset, Offset256th and the
// modulation phase are generator state and advance with every rendered
// frame; Reset rewinds them.
type Raven struct {
	Waveform   Waveform
	SampleRate float64
	// Frequency is the carrier in Hz. Non-positive values render silence.
	Frequency float64
	// Phase is the start phase in frames of the carrier.
	Phase  float64
	Volume float64
	// Tuning is a static detune in cents.
	Tuning float64

	SeqTuning Sequencer
	SeqVolume Sequencer
	LFO       LFO

	SyncEnabled bool
	Sync        [SyncSlots]SyncSlot

	VibratoEnabled bool
	Vibrato        Vibrato

	// Note256thMode measures sequencer rates in steps per 256th note
	// instead of steps per second. Frames256th is the 256th note length.
	Note256thMode bool
	Frames256th   float64

	Offset      uint64
	Offset256th uint64

	mod float64
}

// NewRaven returns a sine voice at unit volume.
func NewRaven(sampleRate, frequency float64) *Raven {
	return &Raven{
		Waveform:   WaveSine,
		SampleRate: sampleRate,
		Frequency:  frequency,
		Volume:     1,
	}
}

// Reset rewinds the generator state to frame 0.
func (r *Raven) Reset() {
	r.Offset = 0
	r.Offset256th = 0
	r.mod = 0
}

// Silent reports whether the voice renders zeros regardless of waveform.
func (r *Raven) Silent() bool {
	return r.Frequency <= 0 || r.SampleRate <= 0 || !core.Finite(r.Frequency) || !core.Finite(r.SampleRate)
}

// Next renders one normalized sample and advances the generator.
func (r *Raven) Next() float64 {
	n := r.Offset
	r.Offset++
	if r.Frames256th > 0 {
		r.Offset256th = uint64(float64(r.Offset) / r.Frames256th)
	}
	if r.Silent() {
		return 0
	}

	t := float64(n) / r.SampleRate
	pos := t
	if r.Note256thMode && r.Frames256th > 0 {
		pos = float64(n) / r.Frames256th
	}

	cents := r.Tuning
	if v, ok := r.SeqTuning.Value(pos); ok {
		cents += v
	}
	cents += r.LFO.Cents(t)
	if r.VibratoEnabled {
		cents += r.Vibrato.Cents(t)
	}

	base := (float64(n) + r.Phase) * r.Frequency / r.SampleRate
	if r.SyncEnabled {
		period := r.SampleRate / r.Frequency
		for i := range r.Sync {
			s := &r.Sync[i]
			if s.fires(n, period) {
				target := s.Phase * r.Frequency / r.SampleRate
				r.mod = wrap(target - base)
			}
		}
	}

	freq := r.Frequency
	if cents != 0 {
		freq *= core.CentsToRatio(cents)
	}
	inc := freq / r.SampleRate
	phase := wrap(base + r.mod)

	vol := r.Volume
	if v, ok := r.SeqVolume.Value(pos); ok {
		vol *= 1 + v
	}
	out := vol * r.Waveform.value(phase, inc)

	if cents != 0 {
		r.mod = wrap(r.mod + (freq-r.Frequency)/r.SampleRate)
	}
	return out
}

// Skip advances the generator by n frames without producing output.
func (r *Raven) Skip(n int) {
	for range n {
		r.Next()
	}
}

func wrap(x float64) float64 {
	return x - math.Floor(x)
}
