package recycling

import (
	"sync/atomic"

	"github.com/cwbudde/algo-recall/dsp/buffer"
	"github.com/cwbudde/algo-recall/dsp/core"
	"github.com/cwbudde/algo-recall/dsp/note"
	"github.com/cwbudde/algo-recall/dsp/scope"
)

// AudioSignal is a stream of fixed-size blocks bound to one RecallID.
//
// The stream cursor is the only field shared with concurrent readers: the
// block at StreamCurrent is being written this tick, blocks before it are
// final and may be read by downstream consumers.
type AudioSignal struct {
	recallID   scope.RecallID
	template   bool
	sampleRate float64
	bufferSize int
	format     core.Format
	frameCount int

	stream  []*buffer.Buffer
	pooled  bool
	current atomic.Int64

	// Note is the composition event that triggered the signal, if any.
	Note *note.Note
}

func newSignal(cfg core.ProcessorConfig, id scope.RecallID, frameCount int, blocks []*buffer.Buffer) *AudioSignal {
	return &AudioSignal{
		recallID:   id,
		template:   id.IsZero(),
		sampleRate: cfg.SampleRate,
		bufferSize: cfg.BufferSize,
		format:     cfg.Format,
		frameCount: frameCount,
		stream:     blocks,
	}
}

// NewTemplate creates a template signal holding samples.
func NewTemplate(cfg core.ProcessorConfig, samples []float64) *AudioSignal {
	return NewSignal(cfg, scope.RecallID{}, samples)
}

// NewSignal creates a signal for id holding a copy of samples, for import
// tasks injecting raw data. Its blocks are allocated outside any pool.
func NewSignal(cfg core.ProcessorConfig, id scope.RecallID, samples []float64) *AudioSignal {
	n := blockCount(len(samples), cfg.BufferSize)
	blocks := make([]*buffer.Buffer, n)
	for i := range blocks {
		b := buffer.New(cfg.BufferSize)
		lo := i * cfg.BufferSize
		hi := min(lo+cfg.BufferSize, len(samples))
		b.CopyFrom(samples[lo:hi])
		blocks[i] = b
	}
	return newSignal(cfg, id, len(samples), blocks)
}

func blockCount(frames, bufferSize int) int {
	if frames <= 0 || bufferSize <= 0 {
		return 0
	}
	return (frames + bufferSize - 1) / bufferSize
}

// RecallID returns the run the signal was created for.
func (s *AudioSignal) RecallID() scope.RecallID { return s.recallID }

// IsTemplate reports whether the signal is a prototype.
func (s *AudioSignal) IsTemplate() bool { return s.template }

// SampleRate returns the sample rate of the stream.
func (s *AudioSignal) SampleRate() float64 { return s.sampleRate }

// BufferSize returns the frames per block.
func (s *AudioSignal) BufferSize() int { return s.bufferSize }

// Format returns the sample format of the stream. Blocks are float64 and
// synthesized samples are held at this format's resolution.
func (s *AudioSignal) Format() core.Format { return s.format }

// FrameCount returns the number of meaningful frames.
func (s *AudioSignal) FrameCount() int { return s.frameCount }

// Blocks returns the number of blocks in the stream.
func (s *AudioSignal) Blocks() int { return len(s.stream) }

// Block returns the samples of block i, nil when out of range.
func (s *AudioSignal) Block(i int) []float64 {
	if i < 0 || i >= len(s.stream) {
		return nil
	}
	return s.stream[i].Samples()
}

// StreamCurrent returns the index of the block processed this tick.
func (s *AudioSignal) StreamCurrent() int {
	return int(s.current.Load())
}

// Current returns the block at the cursor and its first frame. ok is false
// once the stream is exhausted.
func (s *AudioSignal) Current() (block []float64, firstFrame int, ok bool) {
	i := s.StreamCurrent()
	if i >= len(s.stream) {
		return nil, 0, false
	}
	return s.stream[i].Samples(), i * s.bufferSize, true
}

// Advance moves the cursor to the next block and reports whether blocks remain.
func (s *AudioSignal) Advance() bool {
	n := int64(len(s.stream))
	for {
		cur := s.current.Load()
		if cur >= n {
			return false
		}
		if s.current.CompareAndSwap(cur, cur+1) {
			return cur+1 < n
		}
	}
}

// Exhausted reports whether every block has been processed.
func (s *AudioSignal) Exhausted() bool {
	return s.StreamCurrent() >= len(s.stream)
}

// ReadAdvanced copies final frames starting at frame from into dst and
// returns the number copied. Only frames before the cursor are readable.
func (s *AudioSignal) ReadAdvanced(dst []float64, from int) int {
	limit := min(s.StreamCurrent()*s.bufferSize, s.frameCount)
	n := 0
	for from < limit && n < len(dst) {
		bi, off := from/s.bufferSize, from%s.bufferSize
		if bi >= len(s.stream) {
			break
		}
		src := s.stream[bi].Samples()[off:]
		c := copy(dst[n:], src[:min(len(src), limit-from)])
		n += c
		from += c
	}
	return n
}

// Samples returns a copy of all frames regardless of the cursor.
func (s *AudioSignal) Samples() []float64 {
	out := make([]float64, s.frameCount)
	for i, b := range s.stream {
		lo := i * s.bufferSize
		if lo >= len(out) {
			break
		}
		copy(out[lo:], b.Samples())
	}
	return out
}
