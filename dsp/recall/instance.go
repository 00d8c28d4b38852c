package recall

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/cwbudde/algo-recall/dsp/core"
	"github.com/cwbudde/algo-recall/dsp/port"
	"github.com/cwbudde/algo-recall/dsp/recycling"
	"github.com/cwbudde/algo-recall/dsp/scope"
)

// Instance is one template bound to one RecallID and recycling.
//
// The run-state fields are owned by the goroutine running the instance.
type Instance struct {
	template  *Template
	id        scope.RecallID
	recycling *recycling.Recycling
	cfg       core.ProcessorConfig
	logger    *slog.Logger
	kernel    Kernel

	state         atomic.Int32
	doneRequested atomic.Bool

	// Cursor counts the ticks the kernel ran for.
	Cursor uint64
	// DelayCounter and OffsetCounter mirror the transport of the last tick.
	DelayCounter  float64
	OffsetCounter uint64
	// FrameCount is the number of frames the kernel produces, if known.
	FrameCount int
}

// Duplicate binds template r to id and rc. The returned instance shares
// the template ports and starts in StateCreated.
func Duplicate(ctx Context, r Recall, id scope.RecallID, rc *recycling.Recycling) (*Instance, error) {
	if r == nil || !r.IsTemplate() {
		return nil, ErrNotTemplate
	}
	t, ok := r.(*Template)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotTemplate, r)
	}
	if id.IsZero() {
		return nil, fmt.Errorf("%w: no group", ErrOrphanGroup)
	}
	if err := id.Group.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOrphanGroup, err)
	}
	if rc == nil {
		return nil, ErrNoRecycling
	}

	inst := &Instance{
		template:  t,
		id:        id,
		recycling: rc,
		cfg:       ctx.Config,
		logger:    ctx.logger(),
	}
	kernel, err := t.factory(inst)
	if err != nil {
		return nil, fmt.Errorf("recall: %s: %w", t.name, err)
	}
	inst.kernel = kernel

	if err := t.bind(inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// Name returns the template name.
func (i *Instance) Name() string { return i.template.name }

// Algorithm returns the template algorithm.
func (i *Instance) Algorithm() Algorithm { return i.template.algorithm }

// Ports returns the ports shared with the template.
func (i *Instance) Ports() *port.Set { return i.template.ports }

// IsTemplate reports false.
func (i *Instance) IsTemplate() bool { return false }

// Template returns the template the instance was duplicated from.
func (i *Instance) Template() *Template { return i.template }

// RecallID returns the run the instance belongs to.
func (i *Instance) RecallID() scope.RecallID { return i.id }

// Recycling returns the bound recycling.
func (i *Instance) Recycling() *recycling.Recycling { return i.recycling }

// Config returns the processor configuration the instance was created with.
func (i *Instance) Config() core.ProcessorConfig { return i.cfg }

// Logger returns the diagnostic logger.
func (i *Instance) Logger() *slog.Logger { return i.logger }

// Stage returns the template stage.
func (i *Instance) Stage() int { return i.template.stage }

// Signals returns the live signals of the instance's run.
func (i *Instance) Signals() []*recycling.AudioSignal {
	return i.recycling.SignalsFor(i.id)
}

// State returns the lifecycle state.
func (i *Instance) State() State { return State(i.state.Load()) }

// RunOnce runs the kernel for tick. A pending Done request is honoured
// before the kernel runs. Running a finished instance logs and returns
// ErrInstanceDone without side effects.
func (i *Instance) RunOnce(tick Tick) error {
	if i.State() == StateDone {
		i.logger.Warn("recall: run on done instance",
			"recall", i.template.name, "id", i.id.String(), "err", ErrInstanceDone)
		return ErrInstanceDone
	}
	if i.doneRequested.Load() {
		i.finish()
		return nil
	}
	if !i.state.CompareAndSwap(int32(StateCreated), int32(StateRunning)) && i.State() == StateDone {
		return nil
	}

	done, err := i.kernel.Run(i, tick)
	i.Cursor++
	i.DelayCounter = tick.DelayCounter
	i.OffsetCounter = tick.Offset

	if err != nil {
		if errors.Is(err, recycling.ErrBufferExhausted) {
			i.finish()
		}
		i.logger.Error("recall: kernel failed",
			"recall", i.template.name, "id", i.id.String(), "err", err)
		return fmt.Errorf("recall: %s: %w", i.template.name, err)
	}
	if done {
		i.finish()
	}
	return nil
}

// Done requests the instance to finish. It is idempotent. An instance that
// never ran finishes immediately; a running one finishes at its next
// RunOnce. A done instance keeps its (template, RecallID) binding until
// Release.
func (i *Instance) Done() {
	i.doneRequested.Store(true)
	i.state.CompareAndSwap(int32(StateCreated), int32(StateDone))
}

// Release destroys a done instance: it drops the (template, RecallID)
// binding so the RecallID may be duplicated again. It reports false and
// keeps the binding while the instance is not done.
func (i *Instance) Release() bool {
	if i.State() != StateDone {
		return false
	}
	i.template.release(i)
	return true
}

func (i *Instance) finish() {
	for {
		s := i.state.Load()
		if State(s) == StateDone || i.state.CompareAndSwap(s, int32(StateDone)) {
			return
		}
	}
}
