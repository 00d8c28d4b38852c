package envelope

import (
	"errors"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-recall/dsp/core"
	"github.com/cwbudde/algo-recall/dsp/note"
)

// ErrFrameMode is reported when both frame count modes are selected.
var ErrFrameMode = errors.New("envelope: note length and fixed length are exclusive")

// Mode selects how the frame count of a note is derived.
type Mode struct {
	UseNoteLength  bool
	UseFixedLength bool
	FixedLength    int
}

// FrameCount returns the frames the envelope spans for n. It returns 0 when
// no mode is selected and ErrFrameMode when both are.
func (m Mode) FrameCount(n *note.Note, delay float64, bufferSize int) (int, error) {
	switch {
	case m.UseNoteLength && m.UseFixedLength:
		return 0, ErrFrameMode
	case m.UseNoteLength:
		if n == nil {
			return 0, nil
		}
		return n.FrameCount(delay, bufferSize), nil
	case m.UseFixedLength:
		return max(m.FixedLength, 0), nil
	default:
		return 0, nil
	}
}

// Envelope applies note layouts to buffer slices, reusing its gain scratch.
type Envelope struct {
	gains []float64
}

// New returns an Envelope.
func New() *Envelope {
	return &Envelope{}
}

// Apply multiplies buf, which holds frames [firstFrame, firstFrame+len(buf))
// of the note, by the envelope gain. Only frames inside a segment change.
func (e *Envelope) Apply(buf []float64, firstFrame int, l Layout) {
	lastFrame := firstFrame + len(buf)
	for _, s := range l.Segments {
		lo := max(s.Start, firstFrame)
		hi := min(s.End, lastFrame)
		if lo >= hi {
			continue
		}

		e.gains = core.EnsureLen(e.gains, hi-lo)
		Ramp(e.gains, s.Y0, s.Ratio, s.Start, lo)
		vecmath.MulBlockInPlace(buf[lo-firstFrame:hi-firstFrame], e.gains)
	}
}

// Gains writes the multiplier of frames [firstFrame, firstFrame+len(dst))
// into dst; frames outside the note get 1.
func (e *Envelope) Gains(dst []float64, firstFrame int, l Layout) {
	for i := range dst {
		dst[i] = 1
	}
	e.Apply(dst, firstFrame, l)
}

// ApplyNote lays out n over frameCount frames and applies it to buf.
// A zero frame count leaves buf unchanged.
func (e *Envelope) ApplyNote(buf []float64, firstFrame int, n *note.Note, frameCount int) {
	if frameCount <= 0 || n == nil {
		return
	}
	e.Apply(buf, firstFrame, NewLayout(n, frameCount))
}
