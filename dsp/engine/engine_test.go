package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/cwbudde/algo-recall/dsp/core"
	"github.com/cwbudde/algo-recall/dsp/note"
	"github.com/cwbudde/algo-recall/dsp/recall"
	"github.com/cwbudde/algo-recall/dsp/scope"
	"github.com/cwbudde/algo-recall/internal/testutil"
)

var (
	lane0 = scope.Lane{Channel: 0, Line: 0}
	lane1 = scope.Lane{Channel: 1, Line: 0}
)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithProcessor(core.WithSampleRate(48000), core.WithBufferSize(500))}, opts...)
	e, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for _, lane := range []scope.Lane{lane0, lane1} {
		if _, err := e.AddLane(lane); err != nil {
			t.Fatalf("AddLane() error = %v", err)
		}
	}
	return e
}

type trace struct {
	mu    sync.Mutex
	names []string
}

func (tr *trace) index(name string) int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return slices.Index(tr.names, name)
}

func tracerRegistry(tr *trace) *recall.Registry {
	reg := recall.NewRegistry()
	reg.MustRegister("tracer", recall.Definition{New: func(*recall.Instance) (recall.Kernel, error) {
		return recall.KernelFunc(func(inst *recall.Instance, _ recall.Tick) (bool, error) {
			tr.mu.Lock()
			tr.names = append(tr.names, inst.Name())
			tr.mu.Unlock()
			return false, nil
		}), nil
	}})
	return reg
}

func addVoice(t *testing.T, e *Engine, run *Run, id scope.RecallID, n *note.Note) []*recall.Instance {
	t.Helper()
	var out []*recall.Instance
	for _, alg := range []recall.Algorithm{recall.AlgorithmStream, recall.AlgorithmEnvelope, recall.AlgorithmRavenSynth} {
		tmpl, err := e.NewTemplate(string(alg), alg)
		if err != nil {
			t.Fatalf("NewTemplate() error = %v", err)
		}
		inst, err := e.Duplicate(run, tmpl, id)
		if err != nil {
			t.Fatalf("Duplicate(%s) error = %v", alg, err)
		}
		out = append(out, inst)
	}
	if _, err := e.AddNote(id, n); err != nil {
		t.Fatalf("AddNote() error = %v", err)
	}
	return out
}

func oneStepNote() *note.Note {
	return &note.Note{
		X1:      1,
		Y:       note.A4Key,
		Attack:  note.Complex{Real: 0.1, Imag: 1},
		Sustain: note.Complex{Real: 0.7},
		Release: note.Complex{Real: 0.2, Imag: -1},
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"nil logger", WithLogger(nil)},
		{"nil registry", WithRegistry(nil)},
		{"negative frames", WithMaxFrames(-1)},
		{"empty loop", WithLoop(4, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opt); err == nil {
				t.Fatal("New() accepted invalid option")
			}
		})
	}
}

func TestStartRunBuildsScopeTree(t *testing.T) {
	e := newEngine(t)
	run, err := e.StartRun(lane0, lane1)
	if err != nil {
		t.Fatalf("StartRun() error = %v", err)
	}
	if run.Root().Scope() != scope.ScopeAudio || len(run.Root().Children()) != 2 {
		t.Fatalf("root = %s with %d children", run.Root(), len(run.Root().Children()))
	}
	for _, lane := range run.Lanes() {
		out, ok := run.Output(lane)
		if !ok || out.Group.Scope() != scope.ScopeOutput || out.Group.Parent() != run.Root() {
			t.Fatalf("output of %s = %v", lane, out)
		}
		in, ok := run.Input(lane)
		if !ok || in.Group.Scope() != scope.ScopeInput || in.Group.Parent() != out.Group {
			t.Fatalf("input of %s = %v", lane, in)
		}
		if err := in.Group.Validate(); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
	}

	if _, err := e.StartRun(scope.Lane{Channel: 9}); !errors.Is(err, ErrUnknownLane) {
		t.Fatalf("StartRun() unknown lane error = %v", err)
	}
}

func TestChildrenRunBeforeParents(t *testing.T) {
	tr := &trace{}
	e := newEngine(t, WithRegistry(tracerRegistry(tr)))
	run, _ := e.StartRun(lane0, lane1)

	bind := func(name string, id scope.RecallID, stage int) {
		tmpl, err := e.NewTemplate(name, "tracer", recall.WithStage(stage))
		if err != nil {
			t.Fatalf("NewTemplate() error = %v", err)
		}
		if _, err := e.Duplicate(run, tmpl, id); err != nil {
			t.Fatalf("Duplicate(%s) error = %v", name, err)
		}
	}
	in0, _ := run.Input(lane0)
	in1, _ := run.Input(lane1)
	out0, _ := run.Output(lane0)
	out1, _ := run.Output(lane1)
	bind("root", scope.RecallID{Group: run.Root(), Lane: lane0}, 0)
	bind("out0", out0, 0)
	bind("out1", out1, 0)
	bind("in0-late", in0, 1)
	bind("in0", in0, 0)
	bind("in1", in1, 0)

	for range 3 {
		tr.names = nil
		if err := e.Tick(context.Background()); err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
		before := [][2]string{
			{"in0", "in0-late"},
			{"in0-late", "out0"},
			{"in1", "out1"},
			{"out0", "root"},
			{"out1", "root"},
		}
		for _, pair := range before {
			a, b := tr.index(pair[0]), tr.index(pair[1])
			if a < 0 || b < 0 || a >= b {
				t.Fatalf("order %v: %s must run before %s", tr.names, pair[0], pair[1])
			}
		}
	}
}

func TestRunEndToEnd(t *testing.T) {
	var (
		captured []float64
		hooks    int
	)
	e := newEngine(t, WithFinishHook(func(run *Run) {
		hooks++
		in, _ := run.Input(lane0)
		for _, sig := range run.Signals(in) {
			captured = sig.Samples()
		}
	}))
	run, _ := e.StartRun(lane0)
	in, _ := run.Input(lane0)
	instances := addVoice(t, e, run, in, oneStepNote())

	if got := e.Config().Delay(); got != 12 {
		t.Fatalf("Delay() = %v, want 12", got)
	}
	if err := e.RunUntilIdle(context.Background(), 100); err != nil {
		t.Fatalf("RunUntilIdle() error = %v", err)
	}
	if e.Serial() != 13 {
		t.Fatalf("Serial() = %d, want 13", e.Serial())
	}
	if e.Transport().Offset != 1 {
		t.Fatalf("transport offset = %d, want 1", e.Transport().Offset)
	}
	if hooks != 1 || len(captured) != 6000 {
		t.Fatalf("hooks = %d, captured %d frames", hooks, len(captured))
	}
	testutil.RequireFinite(t, captured)
	if want := math.Sin(2 * math.Pi * 440 * 3001 / 48000); math.Abs(captured[3001]-want) > 1e-9 {
		t.Fatalf("sustain sample = %v, want %v", captured[3001], want)
	}
	if math.Abs(captured[5999]) > 1e-2 {
		t.Fatalf("release tail = %v, want ~0", captured[5999])
	}
	for _, inst := range instances {
		if inst.State() != recall.StateDone || inst.Template().BoundCount() != 0 {
			t.Fatalf("%s state = %v", inst.Name(), inst.State())
		}
	}

	rc := e.Chain().Lookup(lane0)
	if len(rc.Signals()) != 0 || rc.LiveFrames() != 0 || e.Chain().Pool().Outstanding() != 0 {
		t.Fatalf("run signals not released: %d signals, %d frames", len(rc.Signals()), rc.LiveFrames())
	}
}

func TestConcurrentRunsOnOneLane(t *testing.T) {
	results := map[*scope.GroupID][]float64{}
	var mu sync.Mutex
	e := newEngine(t, WithFinishHook(func(run *Run) {
		in, _ := run.Input(lane0)
		mu.Lock()
		defer mu.Unlock()
		for _, sig := range run.Signals(in) {
			results[run.Root()] = sig.Samples()
		}
	}))

	for range 4 {
		run, err := e.StartRun(lane0)
		if err != nil {
			t.Fatalf("StartRun() error = %v", err)
		}
		in, _ := run.Input(lane0)
		addVoice(t, e, run, in, oneStepNote())
	}
	if err := e.RunUntilIdle(context.Background(), 100); err != nil {
		t.Fatalf("RunUntilIdle() error = %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("finished runs = %d, want 4", len(results))
	}
	var first []float64
	for _, samples := range results {
		if first == nil {
			first = samples
			continue
		}
		testutil.RequireSliceNearlyEqual(t, samples, first, 0)
	}
}

func TestStopRun(t *testing.T) {
	e := newEngine(t)
	run, _ := e.StartRun(lane0)
	in, _ := run.Input(lane0)
	long := oneStepNote()
	long.X1 = 100
	instances := addVoice(t, e, run, in, long)

	for range 2 {
		if err := e.Tick(context.Background()); err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
	}
	e.StopRun(run)
	if _, err := e.Duplicate(run, instances[0].Template(), in); !errors.Is(err, ErrRunFinished) {
		t.Fatalf("Duplicate() after stop error = %v, want ErrRunFinished", err)
	}
	if err := e.Tick(context.Background()); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if !e.Idle() || !run.Finished() {
		t.Fatalf("run not torn down after stop")
	}
	if got := len(e.Chain().Lookup(lane0).Signals()); got != 0 {
		t.Fatalf("signals after stop = %d, want 0", got)
	}
}

func TestDuplicateForeignGroup(t *testing.T) {
	e := newEngine(t)
	a, _ := e.StartRun(lane0)
	b, _ := e.StartRun(lane0)
	inB, _ := b.Input(lane0)
	tmpl, _ := e.NewTemplate("env", recall.AlgorithmEnvelope)
	if _, err := e.Duplicate(a, tmpl, inB); !errors.Is(err, ErrForeignGroup) {
		t.Fatalf("Duplicate() error = %v, want ErrForeignGroup", err)
	}
}

func TestTickHonoursContext(t *testing.T) {
	e := newEngine(t)
	run, _ := e.StartRun(lane0)
	in, _ := run.Input(lane0)
	addVoice(t, e, run, in, oneStepNote())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Tick(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Tick() error = %v, want context.Canceled", err)
	}
}

func TestLoopingTransport(t *testing.T) {
	e := newEngine(t, WithLoop(0, 2))
	for range 36 {
		if err := e.Tick(context.Background()); err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
	}
	if got := e.Transport().Offset; got != 1 {
		t.Fatalf("transport offset = %d, want 1", got)
	}
}

func TestEmptyRunWaitsForInstances(t *testing.T) {
	e := newEngine(t)
	run, _ := e.StartRun(lane0)
	in, _ := run.Input(lane0)
	for range 3 {
		if err := e.Tick(context.Background()); err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
	}
	if e.Idle() || run.Finished() {
		t.Fatalf("run without instances was torn down")
	}

	instances := addVoice(t, e, run, in, oneStepNote())
	if err := e.RunUntilIdle(context.Background(), 50); err != nil {
		t.Fatalf("RunUntilIdle() error = %v", err)
	}
	for _, inst := range instances {
		if inst.State() != recall.StateDone {
			t.Fatalf("%s state = %v, want done", inst.Name(), inst.State())
		}
		if n := inst.Template().BoundCount(); n != 0 {
			t.Fatalf("%s BoundCount() = %d, want 0", inst.Name(), n)
		}
	}
	if rc := e.Chain().Lookup(lane0); len(rc.Signals()) != 0 || rc.LiveFrames() != 0 {
		t.Fatalf("signals = %d liveFrames = %d, want 0/0", len(rc.Signals()), rc.LiveFrames())
	}
}

func TestRetiredRunRejectsWork(t *testing.T) {
	e := newEngine(t)
	run, _ := e.StartRun(lane0)
	in, _ := run.Input(lane0)
	instances := addVoice(t, e, run, in, oneStepNote())
	if err := e.RunUntilIdle(context.Background(), 50); err != nil {
		t.Fatalf("RunUntilIdle() error = %v", err)
	}

	if _, err := e.Duplicate(run, instances[0].Template(), in); !errors.Is(err, ErrRunFinished) {
		t.Fatalf("Duplicate() after teardown error = %v, want ErrRunFinished", err)
	}
	if _, err := e.AddNote(in, oneStepNote()); !errors.Is(err, ErrRunFinished) {
		t.Fatalf("AddNote() after teardown error = %v, want ErrRunFinished", err)
	}
	if got := e.Chain().Lookup(lane0).LiveFrames(); got != 0 {
		t.Fatalf("LiveFrames() = %d, want 0", got)
	}
}

func TestStoppedEmptyRunIsTornDown(t *testing.T) {
	e := newEngine(t)
	run, _ := e.StartRun(lane0)
	e.StopRun(run)
	if err := e.Tick(context.Background()); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if !e.Idle() || !run.Finished() || !run.Closed() {
		t.Fatalf("stopped empty run still live")
	}
}

func TestLoggerRecordsRunLifecycle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := newEngine(t, WithLogger(logger))
	if e.Logger() != logger {
		t.Fatalf("Logger() did not return the configured logger")
	}
	run, _ := e.StartRun(lane0)
	e.StopRun(run)
	if err := e.Tick(context.Background()); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	out := buf.String()
	for _, msg := range []string{"run started", "run stopped", "run finished", "run=" + run.Root().String()} {
		if !strings.Contains(out, msg) {
			t.Fatalf("log missing %q:\n%s", msg, out)
		}
	}
}
