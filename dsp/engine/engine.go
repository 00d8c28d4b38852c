// Package engine drives recall runs tick by tick.
//
// An Engine is an explicit context: it owns the processor configuration,
// the diagnostic logger, the GroupID allocator, the recycling chain and the
// transport. Nothing is global, so several engines may coexist.
//
// Each Tick advances the transport and runs every live run tree
// children-first. Sibling groups run concurrently; the instances of one
// group run sequentially in stage order once all of its children are
// finished. Instances that finish during a tick are torn down after it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-recall/dsp/core"
	"github.com/cwbudde/algo-recall/dsp/note"
	"github.com/cwbudde/algo-recall/dsp/recall"
	"github.com/cwbudde/algo-recall/dsp/recycling"
	"github.com/cwbudde/algo-recall/dsp/scope"
	"github.com/cwbudde/algo-recall/dsp/transport"
)

var (
	// ErrUnknownLane is returned for lanes without a recycling.
	ErrUnknownLane = errors.New("engine: unknown lane")
	// ErrForeignGroup is returned when a RecallID does not belong to the run.
	ErrForeignGroup = errors.New("engine: group does not belong to run")
	// ErrRunFinished is returned when duplicating into a finished run.
	ErrRunFinished = errors.New("engine: run is finished")
)

// Engine is the recall runtime context.
type Engine struct {
	cfg       core.ProcessorConfig
	logger    *slog.Logger
	registry  *recall.Registry
	alloc     scope.Allocator
	chain     *recycling.Chain
	transport *transport.Counter
	onFinish  func(*Run)

	mu     sync.Mutex
	runs   []*Run
	serial uint64
}

// New creates an engine.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.registry == nil {
		cfg.registry = recall.DefaultRegistry()
	}

	pc := core.ApplyProcessorOptions(cfg.processor...)
	if pc.Delay() <= 0 {
		return nil, fmt.Errorf("engine: invalid processor configuration %+v", pc)
	}

	e := &Engine{
		cfg:       pc,
		logger:    cfg.logger,
		registry:  cfg.registry,
		chain:     recycling.NewChain(pc, recycling.WithMaxFrames(cfg.maxFrames)),
		transport: transport.New(pc.Delay()),
		onFinish:  cfg.onFinish,
	}
	if cfg.loop {
		e.transport.SetLoop(cfg.loopStart, cfg.loopEnd)
	}
	return e, nil
}

// Config returns the processor configuration.
func (e *Engine) Config() core.ProcessorConfig { return e.cfg }

// Logger returns the diagnostic logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// Chain returns the recycling chain.
func (e *Engine) Chain() *recycling.Chain { return e.chain }

// Transport returns the transport counter.
func (e *Engine) Transport() *transport.Counter { return e.transport }

// Serial returns the number of completed ticks.
func (e *Engine) Serial() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.serial
}

// AddLane creates the recycling of lane. Lanes must be added before runs
// are started on them.
func (e *Engine) AddLane(lane scope.Lane) (*recycling.Recycling, error) {
	return e.chain.Add(lane)
}

// NewTemplate creates a template from the engine registry.
func (e *Engine) NewTemplate(name string, alg recall.Algorithm, opts ...recall.TemplateOption) (*recall.Template, error) {
	return recall.NewTemplate(e.registry, name, alg, opts...)
}

// StartRun allocates a run over lanes.
func (e *Engine) StartRun(lanes ...scope.Lane) (*Run, error) {
	root := e.alloc.NewRoot()
	run := &Run{
		root:   root,
		output: make(map[scope.Lane]*scope.GroupID, len(lanes)),
		input:  make(map[scope.Lane]*scope.GroupID, len(lanes)),
		groups: make(map[*scope.GroupID][]*recall.Instance),
		chain:  e.chain,
	}
	for _, lane := range lanes {
		if e.chain.Lookup(lane) == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownLane, lane)
		}
		if _, dup := run.output[lane]; dup {
			continue
		}
		out, err := e.alloc.NewChild(root, scope.ScopeOutput)
		if err != nil {
			return nil, err
		}
		in, err := e.alloc.NewChild(out, scope.ScopeInput)
		if err != nil {
			return nil, err
		}
		run.output[lane] = out
		run.input[lane] = in
		run.lanes = append(run.lanes, lane)
	}

	e.mu.Lock()
	e.runs = append(e.runs, run)
	e.mu.Unlock()
	e.logger.Debug("engine: run started", "run", root.String(), "lanes", len(run.output))
	return run, nil
}

// Runs returns the live runs.
func (e *Engine) Runs() []*Run {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Run(nil), e.runs...)
}

// Duplicate binds tmpl to id within run.
func (e *Engine) Duplicate(run *Run, tmpl recall.Recall, id scope.RecallID) (*recall.Instance, error) {
	if id.Group == nil || id.Group.Root() != run.root {
		return nil, fmt.Errorf("%w: %s", ErrForeignGroup, id)
	}
	if run.Closed() {
		return nil, ErrRunFinished
	}
	rc := e.chain.Lookup(id.Lane)
	if rc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLane, id.Lane)
	}

	inst, err := recall.Duplicate(recall.Context{Config: e.cfg, Logger: e.logger}, tmpl, id, rc)
	if err != nil {
		return nil, err
	}
	if !run.add(inst) {
		inst.Done()
		inst.Release()
		return nil, ErrRunFinished
	}
	return inst, nil
}

// AddNote allocates a run signal on the lane of id spanning n. The run
// owning id must still be live.
func (e *Engine) AddNote(id scope.RecallID, n *note.Note) (*recycling.AudioSignal, error) {
	if id.Group == nil {
		return nil, fmt.Errorf("%w: %s", ErrForeignGroup, id)
	}
	rc := e.chain.Lookup(id.Lane)
	if rc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLane, id.Lane)
	}
	run := e.runOf(id.Group.Root())
	if run == nil {
		return nil, ErrRunFinished
	}

	// Holding the run lock orders the allocation against teardown, which
	// retires the run before releasing its signals.
	run.mu.Lock()
	defer run.mu.Unlock()
	if run.closedLocked() {
		return nil, ErrRunFinished
	}
	sig, err := rc.CreateAudioSignalWithFrameCount(id, n.FrameCount(e.cfg.Delay(), e.cfg.BufferSize))
	if err != nil {
		return nil, err
	}
	sig.Note = n
	return sig, nil
}

func (e *Engine) runOf(root *scope.GroupID) *Run {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, run := range e.runs {
		if run.root == root {
			return run
		}
	}
	return nil
}

// StopRun cancels run cooperatively. Its instances finish on their next
// run and the run is torn down after that tick.
func (e *Engine) StopRun(run *Run) {
	run.mu.Lock()
	run.stopped = true
	run.mu.Unlock()
	for _, inst := range run.Instances() {
		inst.Done()
	}
	e.logger.Debug("engine: run stopped", "run", run.root.String())
}

type finished struct {
	run  *Run
	inst *recall.Instance
}

// Tick advances the transport and runs every live run once.
func (e *Engine) Tick(ctx context.Context) error {
	e.mu.Lock()
	serial := e.serial
	runs := append([]*Run(nil), e.runs...)
	e.mu.Unlock()

	stepped := e.transport.Tick()
	tick := recall.Tick{
		Serial:       serial,
		Offset:       e.transport.Offset,
		DelayCounter: e.transport.DelayCounter,
		Stepped:      stepped,
	}

	doneCh := make(chan finished)
	collected := make(chan []finished)
	go func() {
		var list []finished
		for f := range doneCh {
			list = append(list, f)
		}
		collected <- list
	}()

	g, gctx := errgroup.WithContext(ctx)
	for _, run := range runs {
		g.Go(func() error {
			return e.runGroup(gctx, run, run.root, tick, doneCh)
		})
	}
	err := g.Wait()
	close(doneCh)

	for _, f := range <-collected {
		if f.inst.Algorithm() == recall.AlgorithmStream {
			f.run.finishWith(f.inst.RecallID())
		}
	}
	e.teardown(runs)

	e.mu.Lock()
	e.serial++
	e.mu.Unlock()

	if err != nil {
		return fmt.Errorf("engine: tick %d: %w", serial, err)
	}
	return nil
}

// runGroup runs the subtree of g: children concurrently, then the
// instances of g in stage order.
func (e *Engine) runGroup(ctx context.Context, run *Run, g *scope.GroupID, tick recall.Tick, doneCh chan<- finished) error {
	if children := g.Children(); len(children) > 0 {
		cg, cctx := errgroup.WithContext(ctx)
		for _, c := range children {
			cg.Go(func() error {
				return e.runGroup(cctx, run, c, tick, doneCh)
			})
		}
		if err := cg.Wait(); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, inst := range run.groupInstances(g) {
		if inst.State() == recall.StateDone {
			continue
		}
		// Kernel errors are logged by the instance and do not stop the tick.
		_ = inst.RunOnce(tick)
		if inst.State() == recall.StateDone {
			doneCh <- finished{run: run, inst: inst}
		}
	}
	return nil
}

// teardown settles stream-driven runs and removes finished ones.
func (e *Engine) teardown(runs []*Run) {
	var gone []*Run
	for _, run := range runs {
		run.settle()
		if !run.retire() {
			continue
		}
		if e.onFinish != nil {
			e.onFinish(run)
		}
		for _, inst := range run.Instances() {
			inst.Release()
		}
		n := e.chain.RemoveRun(run.root)
		e.logger.Debug("engine: run finished", "run", run.root.String(), "signals", n)
		gone = append(gone, run)
	}
	if len(gone) == 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.runs[:0]
	for _, run := range e.runs {
		if !containsRun(gone, run) {
			kept = append(kept, run)
		}
	}
	for i := len(kept); i < len(e.runs); i++ {
		e.runs[i] = nil
	}
	e.runs = kept
}

func containsRun(list []*Run, r *Run) bool {
	for _, x := range list {
		if x == r {
			return true
		}
	}
	return false
}

// Idle reports whether no run is live.
func (e *Engine) Idle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.runs) == 0
}

// RunUntilIdle ticks until every run finished, ctx is done or maxTicks
// ticks elapsed. maxTicks <= 0 means no limit.
func (e *Engine) RunUntilIdle(ctx context.Context, maxTicks int) error {
	for i := 0; maxTicks <= 0 || i < maxTicks; i++ {
		if e.Idle() {
			return nil
		}
		if err := e.Tick(ctx); err != nil {
			return err
		}
	}
	if !e.Idle() {
		return fmt.Errorf("engine: still running after %d ticks", maxTicks)
	}
	return nil
}
