package recall

import (
	"errors"
	"log/slog"

	"github.com/cwbudde/algo-recall/dsp/core"
	"github.com/cwbudde/algo-recall/dsp/port"
)

var (
	// ErrNotTemplate is returned when a duplicate is used as a template.
	ErrNotTemplate = errors.New("recall: not a template")
	// ErrAlreadyBound is returned for a second live duplicate of one
	// template under the same RecallID.
	ErrAlreadyBound = errors.New("recall: template already bound to recall id")
	// ErrOrphanGroup is returned when a RecallID group does not root at an
	// audio-scope group.
	ErrOrphanGroup = errors.New("recall: orphan group")
	// ErrInstanceDone is reported when a finished instance is run again.
	ErrInstanceDone = errors.New("recall: instance is done")
	// ErrUnknownAlgorithm is returned for algorithms without a registered kernel.
	ErrUnknownAlgorithm = errors.New("recall: unknown algorithm")
	// ErrNoRecycling is returned when an instance is bound to no recycling.
	ErrNoRecycling = errors.New("recall: nil recycling")
)

// Algorithm tags the kernel a template runs.
type Algorithm string

const (
	AlgorithmEnvelope   Algorithm = "envelope"
	AlgorithmRavenSynth Algorithm = "raven-synth"
	AlgorithmPlayback   Algorithm = "playback"
	AlgorithmStream     Algorithm = "stream"
	AlgorithmPlugin     Algorithm = "plugin"
	// AlgorithmSF2Synth is recognized but has no built-in kernel.
	AlgorithmSF2Synth Algorithm = "sf2-synth"
)

// State is the lifecycle state of an instance.
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateDone
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	default:
		return "invalid"
	}
}

// Recall is implemented by templates and their duplicates.
type Recall interface {
	Name() string
	Algorithm() Algorithm
	Ports() *port.Set
	IsTemplate() bool
}

// Context carries the environment instances run in.
type Context struct {
	Config core.ProcessorConfig
	Logger *slog.Logger
}

func (c Context) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// Tick describes the engine tick an instance is run for.
type Tick struct {
	// Serial counts engine ticks from 0.
	Serial uint64
	// Offset is the transport beat step after the tick.
	Offset uint64
	// DelayCounter is the transport sub-step position after the tick.
	DelayCounter float64
	// Stepped reports whether the tick consumed a beat step.
	Stepped bool
}
