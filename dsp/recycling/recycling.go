package recycling

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cwbudde/algo-recall/dsp/buffer"
	"github.com/cwbudde/algo-recall/dsp/core"
	"github.com/cwbudde/algo-recall/dsp/scope"
)

var (
	// ErrBufferExhausted is returned when an allocation exceeds the frame budget.
	ErrBufferExhausted = errors.New("recycling: frame budget exhausted")
	// ErrTemplateExists is returned when a second template signal is added.
	ErrTemplateExists = errors.New("recycling: template signal already set")
	// ErrNoTemplate is returned when a run copy is requested without a template.
	ErrNoTemplate = errors.New("recycling: no template signal")
	// ErrBufferSize is returned for signals whose block size differs from the recycling.
	ErrBufferSize = errors.New("recycling: buffer size mismatch")
	// ErrTemplateID is returned when a live signal is requested for the zero RecallID.
	ErrTemplateID = errors.New("recycling: run signal requires a recall id")
)

// Recycling owns the audio signals of one lane. Signals are appended in
// creation order and removed only when their run has finished. It is safe
// for concurrent use.
type Recycling struct {
	lane      scope.Lane
	cfg       core.ProcessorConfig
	pool      *buffer.Pool
	maxFrames int

	mu         sync.RWMutex
	template   *AudioSignal
	signals    []*AudioSignal
	liveFrames int
}

// Lane returns the channel lane of the recycling.
func (r *Recycling) Lane() scope.Lane { return r.lane }

// Template returns the template signal, or nil.
func (r *Recycling) Template() *AudioSignal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.template
}

// Signals returns a snapshot of the live signals in creation order.
func (r *Recycling) Signals() []*AudioSignal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*AudioSignal(nil), r.signals...)
}

// SignalsFor returns the live signals created for id.
func (r *Recycling) SignalsFor(id scope.RecallID) []*AudioSignal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*AudioSignal
	for _, s := range r.signals {
		if s.recallID == id {
			out = append(out, s)
		}
	}
	return out
}

// LiveFrames returns the frames allocated to live signals.
func (r *Recycling) LiveFrames() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.liveFrames
}

// AddAudioSignal transfers ownership of s to the recycling. A template
// signal becomes the recycling prototype.
func (r *Recycling) AddAudioSignal(s *AudioSignal) error {
	if s == nil {
		return errors.New("recycling: nil signal")
	}
	if s.bufferSize != r.cfg.BufferSize {
		return fmt.Errorf("%w: %d != %d", ErrBufferSize, s.bufferSize, r.cfg.BufferSize)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s.template {
		if r.template != nil {
			return ErrTemplateExists
		}
		r.template = s
		return nil
	}

	frames := len(s.stream) * s.bufferSize
	if r.maxFrames > 0 && r.liveFrames+frames > r.maxFrames {
		return fmt.Errorf("%w: lane %s", ErrBufferExhausted, r.lane)
	}
	r.liveFrames += frames
	r.signals = append(r.signals, s)
	return nil
}

// CreateAudioSignalWithFrameCount allocates a silent signal for id.
func (r *Recycling) CreateAudioSignalWithFrameCount(id scope.RecallID, frameCount int) (*AudioSignal, error) {
	if id.IsZero() {
		return nil, ErrTemplateID
	}
	n := blockCount(frameCount, r.cfg.BufferSize)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.maxFrames > 0 && r.liveFrames+n*r.cfg.BufferSize > r.maxFrames {
		return nil, fmt.Errorf("%w: lane %s needs %d frames", ErrBufferExhausted, r.lane, n*r.cfg.BufferSize)
	}

	blocks := make([]*buffer.Buffer, n)
	for i := range blocks {
		blocks[i] = r.pool.Get()
	}
	s := newSignal(r.cfg, id, max(frameCount, 0), blocks)
	s.pooled = true
	r.liveFrames += n * r.cfg.BufferSize
	r.signals = append(r.signals, s)
	return s, nil
}

// DuplicateTemplate creates a run signal holding a copy of the template.
func (r *Recycling) DuplicateTemplate(id scope.RecallID) (*AudioSignal, error) {
	tmpl := r.Template()
	if tmpl == nil {
		return nil, ErrNoTemplate
	}
	s, err := r.CreateAudioSignalWithFrameCount(id, tmpl.frameCount)
	if err != nil {
		return nil, err
	}
	for i, b := range s.stream {
		b.CopyFrom(tmpl.stream[i].Samples())
	}
	return s, nil
}

// RemoveWhere drops every live signal for which match returns true and
// returns pooled blocks. Readers must release removed signals first.
// It returns the number of removed signals.
func (r *Recycling) RemoveWhere(match func(*AudioSignal) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.signals[:0]
	removed := 0
	for _, s := range r.signals {
		if !match(s) {
			kept = append(kept, s)
			continue
		}
		removed++
		r.liveFrames -= len(s.stream) * s.bufferSize
		if s.pooled {
			for _, b := range s.stream {
				r.pool.Put(b)
			}
			s.pooled = false
		}
	}
	for i := len(kept); i < len(r.signals); i++ {
		r.signals[i] = nil
	}
	r.signals = kept
	return removed
}

// RemoveRun drops the signals of every RecallID rooted at root.
func (r *Recycling) RemoveRun(root *scope.GroupID) int {
	return r.RemoveWhere(func(s *AudioSignal) bool {
		return s.recallID.Group != nil && s.recallID.Group.Root() == root
	})
}
