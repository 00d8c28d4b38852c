package recall

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-recall/dsp/port"
)

// Kernel is the per-instance processing contract. Run processes the
// current block of the instance's signals and reports whether the
// instance has finished.
type Kernel interface {
	Run(inst *Instance, tick Tick) (done bool, err error)
}

// KernelFunc adapts a function to Kernel.
type KernelFunc func(inst *Instance, tick Tick) (bool, error)

// Run calls f.
func (f KernelFunc) Run(inst *Instance, tick Tick) (bool, error) { return f(inst, tick) }

// Factory builds the kernel state of a new instance.
type Factory func(inst *Instance) (Kernel, error)

// Definition describes an algorithm: its ports, default stage and kernel.
type Definition struct {
	Ports []port.Spec
	Stage int
	New   Factory
}

// Registry maps algorithms to their definitions.
type Registry struct {
	defs map[Algorithm]Definition
}

var errDuplicateAlgorithm = errors.New("duplicate algorithm")

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[Algorithm]Definition)}
}

// Register adds the definition for alg.
func (r *Registry) Register(alg Algorithm, def Definition) error {
	if alg == "" {
		return errors.New("empty algorithm")
	}

	if def.New == nil {
		return errors.New("nil factory")
	}

	if _, exists := r.defs[alg]; exists {
		return fmt.Errorf("%w: %s", errDuplicateAlgorithm, alg)
	}

	r.defs[alg] = def

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(alg Algorithm, def Definition) {
	err := r.Register(alg, def)
	if err != nil {
		panic("recall registry: " + err.Error())
	}
}

// Lookup returns the definition of alg.
func (r *Registry) Lookup(alg Algorithm) (Definition, bool) {
	def, ok := r.defs[alg]
	return def, ok
}

// DefaultRegistry returns a Registry holding the built-in algorithms.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(AlgorithmRavenSynth, Definition{Ports: ravenPorts(), Stage: 0, New: newRavenKernel})
	r.MustRegister(AlgorithmPlayback, Definition{Ports: playbackPorts(), Stage: 0, New: newPlaybackKernel})
	r.MustRegister(AlgorithmEnvelope, Definition{Ports: envelopePorts(), Stage: 1, New: newEnvelopeKernel})
	r.MustRegister(AlgorithmPlugin, Definition{Stage: 1, New: newPluginKernel})
	r.MustRegister(AlgorithmStream, Definition{Stage: 2, New: newStreamKernel})
	return r
}
