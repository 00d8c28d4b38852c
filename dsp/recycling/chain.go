package recycling

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cwbudde/algo-recall/dsp/buffer"
	"github.com/cwbudde/algo-recall/dsp/core"
	"github.com/cwbudde/algo-recall/dsp/scope"
)

// ErrLaneExists is returned when a lane already owns a recycling.
var ErrLaneExists = errors.New("recycling: lane already has a recycling")

// Option configures a Chain.
type Option func(*Chain)

// WithMaxFrames limits the live frames each recycling may allocate.
// Zero disables the limit.
func WithMaxFrames(frames int) Option {
	return func(c *Chain) {
		if frames >= 0 {
			c.maxFrames = frames
		}
	}
}

// Chain is the arena of recyclings. Exactly one recycling exists per lane.
type Chain struct {
	cfg       core.ProcessorConfig
	pool      *buffer.Pool
	maxFrames int

	recyclings []*Recycling
	byLane     map[scope.Lane]int
}

// NewChain creates an empty chain whose signals use cfg.
func NewChain(cfg core.ProcessorConfig, opts ...Option) *Chain {
	c := &Chain{
		cfg:    cfg,
		pool:   buffer.NewPool(cfg.BufferSize),
		byLane: make(map[scope.Lane]int),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Config returns the processor configuration of the chain.
func (c *Chain) Config() core.ProcessorConfig { return c.cfg }

// Pool returns the block pool shared by all recyclings.
func (c *Chain) Pool() *buffer.Pool { return c.pool }

// Add appends a recycling for lane.
func (c *Chain) Add(lane scope.Lane) (*Recycling, error) {
	if _, ok := c.byLane[lane]; ok {
		return nil, fmt.Errorf("%w: %s", ErrLaneExists, lane)
	}
	r := &Recycling{
		lane:      lane,
		cfg:       c.cfg,
		pool:      c.pool,
		maxFrames: c.maxFrames,
	}
	c.byLane[lane] = len(c.recyclings)
	c.recyclings = append(c.recyclings, r)
	return r, nil
}

// Lookup returns the recycling of lane, or nil.
func (c *Chain) Lookup(lane scope.Lane) *Recycling {
	i, ok := c.byLane[lane]
	if !ok {
		return nil
	}
	return c.recyclings[i]
}

// Index returns the arena index of lane, or -1.
func (c *Chain) Index(lane scope.Lane) int {
	if i, ok := c.byLane[lane]; ok {
		return i
	}
	return -1
}

// Len returns the number of recyclings.
func (c *Chain) Len() int { return len(c.recyclings) }

// At returns the recycling at index i, or nil.
func (c *Chain) At(i int) *Recycling {
	if i < 0 || i >= len(c.recyclings) {
		return nil
	}
	return c.recyclings[i]
}

// Range returns the recyclings from first up to but excluding last.
// Bounds are clamped; a negative last means the end of the chain. The
// result is a copy.
func (c *Chain) Range(first, last int) []*Recycling {
	if last < 0 || last > len(c.recyclings) {
		last = len(c.recyclings)
	}
	first = max(first, 0)
	if first >= last {
		return nil
	}
	return slices.Clone(c.recyclings[first:last])
}

// RemoveRun drops the run signals rooted at root from every recycling.
func (c *Chain) RemoveRun(root *scope.GroupID) int {
	n := 0
	for _, r := range c.recyclings {
		n += r.RemoveRun(root)
	}
	return n
}
