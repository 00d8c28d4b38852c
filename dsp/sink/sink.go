// Package sink hands rendered audio to downstream consumers.
//
// Streamer exposes the final frames of audio signals as a beep.Streamer,
// so a run can be played through beep/speaker while the engine is still
// ticking. WriteWAV encodes a mixdown with beep/wav.
package sink

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/cwbudde/algo-recall/dsp/core"
	"github.com/cwbudde/algo-recall/dsp/recycling"
)

// Streamer reads the advanced portion of a set of signals, summed to mono
// and duplicated to both channels. Frames the engine has not finished yet
// are played as silence and counted as underruns.
type Streamer struct {
	signals []*recycling.AudioSignal
	length  int
	pos     int
	scratch []float64
	mix     []float64

	// Underruns counts frames padded with silence.
	Underruns int
}

var _ beep.Streamer = (*Streamer)(nil)

// NewStreamer returns a Streamer over signals.
func NewStreamer(signals ...*recycling.AudioSignal) *Streamer {
	s := &Streamer{signals: signals}
	for _, sig := range signals {
		s.length = max(s.length, sig.FrameCount())
	}
	return s
}

// Stream implements beep.Streamer.
func (s *Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= s.length {
		return 0, false
	}
	want := min(len(samples), s.length-s.pos)
	s.mix = core.EnsureLen(s.mix, want)
	s.scratch = core.EnsureLen(s.scratch, want)
	core.Zero(s.mix)

	ready := want
	for _, sig := range s.signals {
		if s.pos >= sig.FrameCount() {
			continue
		}
		avail := min(want, sig.FrameCount()-s.pos)
		got := sig.ReadAdvanced(s.scratch[:avail], s.pos)
		if got < avail {
			ready = min(ready, got)
		}
		core.AddAt(s.mix, 0, s.scratch[:got])
	}
	if ready < want {
		s.Underruns += want - ready
		core.Zero(s.mix[ready:])
	}

	for i := range want {
		samples[i][0] = s.mix[i]
		samples[i][1] = s.mix[i]
	}
	s.pos += want
	return want, true
}

// Err implements beep.Streamer.
func (s *Streamer) Err() error { return nil }

// Len returns the length of the longest signal in frames.
func (s *Streamer) Len() int { return s.length }

// Position returns the next frame to be streamed.
func (s *Streamer) Position() int { return s.pos }

// Mixdown sums the samples of signals regardless of their cursors.
func Mixdown(signals ...*recycling.AudioSignal) []float64 {
	length := 0
	for _, sig := range signals {
		length = max(length, sig.FrameCount())
	}
	out := make([]float64, length)
	for _, sig := range signals {
		core.AddAt(out, 0, sig.Samples())
	}
	return out
}

// Precision returns the WAV bytes per sample used for format.
func Precision(format core.Format) int {
	switch format {
	case core.FormatS8:
		return 1
	case core.FormatS16:
		return 2
	default:
		return 3
	}
}

// WriteWAV encodes samples as a mono WAV file. Samples are clipped to
// [-1, 1] by the encoder.
func WriteWAV(w io.WriteSeeker, sampleRate float64, format core.Format, samples []float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) {
		return fmt.Errorf("sink: invalid sample rate %v", sampleRate)
	}
	if w == nil {
		return errors.New("sink: nil writer")
	}
	f := beep.Format{
		SampleRate:  beep.SampleRate(math.Round(sampleRate)),
		NumChannels: 1,
		Precision:   Precision(format),
	}
	if err := wav.Encode(w, FromSamples(samples), f); err != nil {
		return fmt.Errorf("sink: encode wav: %w", err)
	}
	return nil
}

// FromSamples returns a mono beep.Streamer over samples.
func FromSamples(samples []float64) beep.Streamer {
	return &sliceStreamer{samples: samples}
}

type sliceStreamer struct {
	samples []float64
	pos     int
}

func (s *sliceStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	n := copy2(samples, s.samples[s.pos:])
	s.pos += n
	return n, true
}

func (s *sliceStreamer) Err() error { return nil }

func copy2(dst [][2]float64, src []float64) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = [2]float64{src[i], src[i]}
	}
	return n
}
