package engine

import (
	"slices"
	"sync"

	"github.com/cwbudde/algo-recall/dsp/recall"
	"github.com/cwbudde/algo-recall/dsp/recycling"
	"github.com/cwbudde/algo-recall/dsp/scope"
)

// Run is one playback run: an audio-scope root with an output and an
// input group per lane.
type Run struct {
	root   *scope.GroupID
	output map[scope.Lane]*scope.GroupID
	input  map[scope.Lane]*scope.GroupID
	lanes  []scope.Lane
	chain  *recycling.Chain

	mu        sync.Mutex
	groups    map[*scope.GroupID][]*recall.Instance
	instances []*recall.Instance
	stopped   bool
	retired   bool
}

// Root returns the audio-scope root group.
func (r *Run) Root() *scope.GroupID { return r.root }

// Output returns the output-scope RecallID of lane.
func (r *Run) Output(lane scope.Lane) (scope.RecallID, bool) {
	g, ok := r.output[lane]
	return scope.RecallID{Group: g, Lane: lane}, ok
}

// Input returns the input-scope RecallID of lane.
func (r *Run) Input(lane scope.Lane) (scope.RecallID, bool) {
	g, ok := r.input[lane]
	return scope.RecallID{Group: g, Lane: lane}, ok
}

// Lanes returns the lanes of the run in start order.
func (r *Run) Lanes() []scope.Lane {
	return slices.Clone(r.lanes)
}

// Signals returns the live signals of id.
func (r *Run) Signals(id scope.RecallID) []*recycling.AudioSignal {
	rc := r.chain.Lookup(id.Lane)
	if rc == nil {
		return nil
	}
	return rc.SignalsFor(id)
}

// Instances returns the instances of the run in duplication order.
func (r *Run) Instances() []*recall.Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.instances)
}

// Stopped reports whether StopRun was called.
func (r *Run) Stopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

// Closed reports whether the run stopped or was torn down.
func (r *Run) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closedLocked()
}

// Finished reports whether the run has ended: every instance is done and
// the run either had instances or was stopped. A freshly started run with
// no instances yet is not finished.
func (r *Run) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finishedLocked()
}

func (r *Run) finishedLocked() bool {
	if r.retired {
		return true
	}
	if len(r.instances) == 0 && !r.stopped {
		return false
	}
	for _, inst := range r.instances {
		if inst.State() != recall.StateDone {
			return false
		}
	}
	return true
}

// retire marks a finished run as torn down and reports whether it did.
// Once retired the run accepts no instances or notes.
func (r *Run) retire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.retired || !r.finishedLocked() {
		return false
	}
	r.retired = true
	return true
}

func (r *Run) closedLocked() bool {
	return r.stopped || r.retired
}

// add records inst under its group. It fails once the run is stopped or
// retired.
func (r *Run) add(inst *recall.Instance) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closedLocked() {
		return false
	}
	g := inst.RecallID().Group
	list := append(r.groups[g], inst)
	slices.SortStableFunc(list, func(a, b *recall.Instance) int { return a.Stage() - b.Stage() })
	r.groups[g] = list
	r.instances = append(r.instances, inst)
	return true
}

// groupInstances returns the instances bound to g in stage order.
func (r *Run) groupInstances(g *scope.GroupID) []*recall.Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.groups[g])
}

// finishWith calls Done on every instance sharing id.
func (r *Run) finishWith(id scope.RecallID) {
	for _, inst := range r.Instances() {
		if inst.RecallID() == id {
			inst.Done()
		}
	}
}

// settle ends the run once all its stream instances are done.
func (r *Run) settle() {
	streams, live := 0, 0
	all := r.Instances()
	for _, inst := range all {
		if inst.Algorithm() != recall.AlgorithmStream {
			continue
		}
		streams++
		if inst.State() != recall.StateDone {
			live++
		}
	}
	if streams > 0 && live == 0 {
		for _, inst := range all {
			inst.Done()
		}
	}
}
