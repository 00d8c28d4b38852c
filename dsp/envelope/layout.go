package envelope

import (
	"math"

	"github.com/cwbudde/algo-recall/dsp/core"
	"github.com/cwbudde/algo-recall/dsp/note"
)

// Stage names one of the four envelope segments.
type Stage int

const (
	StageAttack Stage = iota
	StageDecay
	StageSustain
	StageRelease
)

func (s Stage) String() string {
	switch s {
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	default:
		return "invalid"
	}
}

// Segment is one linear ramp over frames [Start, End).
type Segment struct {
	Stage Stage
	Start int
	End   int
	Y0    float64
	Y1    float64
	Ratio float64
}

// Len returns the number of frames covered.
func (s Segment) Len() int {
	return s.End - s.Start
}

// Gain returns the multiplier at frame x, which must lie in the segment.
func (s Segment) Gain(x int) float64 {
	return VolumeAt(s.Y0, s.Ratio, s.Start, x)
}

// Layout is the segment plan of one note.
type Layout struct {
	FrameCount int
	Segments   [4]Segment
}

// NewLayout stacks the note's attack, decay, sustain and release over
// frameCount frames. Boundaries are rounded once from the cumulative
// fractions and the release segment ends on frameCount, so the segment
// lengths always sum to frameCount.
func NewLayout(n *note.Note, frameCount int) Layout {
	l := Layout{FrameCount: max(frameCount, 0)}
	if n == nil {
		return l
	}

	pairs := [4]note.Complex{n.Attack, n.Decay, n.Sustain, n.Release}
	y := n.Ratio.Imag
	cum := 0.0
	start := 0
	for i, p := range pairs {
		frac := p.Real
		if !core.Finite(frac) || frac < 0 {
			frac = 0
		}
		cum = math.Min(cum+frac, 1)

		end := int(math.Round(cum * float64(l.FrameCount)))
		if Stage(i) == StageRelease {
			end = l.FrameCount
		}
		end = max(end, start)

		delta := p.Imag
		if !core.Finite(delta) {
			delta = 0
		}
		seg := Segment{
			Stage: Stage(i),
			Start: start,
			End:   end,
			Y0:    y,
			Y1:    y + delta,
		}
		seg.Ratio = Ratio(float64(seg.Start), seg.Y0, float64(seg.End), seg.Y1)
		l.Segments[i] = seg

		y = seg.Y1
		start = end
	}
	return l
}

// Total returns the sum of the segment lengths.
func (l Layout) Total() int {
	total := 0
	for _, s := range l.Segments {
		total += s.Len()
	}
	return total
}

// GainAt returns the multiplier of frame x; frames outside the note yield 1.
func (l Layout) GainAt(x int) float64 {
	for _, s := range l.Segments {
		if x >= s.Start && x < s.End {
			return s.Gain(x)
		}
	}
	return 1
}
