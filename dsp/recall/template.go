package recall

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cwbudde/algo-recall/dsp/port"
	"github.com/cwbudde/algo-recall/dsp/scope"
)

// Template is the prototype of an effect. Its ports are shared with every
// duplicate; only the duplicate bindings change after construction.
type Template struct {
	name      string
	algorithm Algorithm
	ports     *port.Set
	stage     int
	factory   Factory

	mu    sync.Mutex
	bound map[scope.RecallID]*Instance
}

type templateConfig struct {
	stage    int
	hasStage bool
	extra    []port.Spec
}

// TemplateOption configures NewTemplate.
type TemplateOption func(*templateConfig) error

// WithStage overrides the default stage of the algorithm. Instances of a
// group run in ascending stage order.
func WithStage(stage int) TemplateOption {
	return func(cfg *templateConfig) error {
		if stage < 0 {
			return fmt.Errorf("recall: stage must be >= 0: %d", stage)
		}
		cfg.stage = stage
		cfg.hasStage = true
		return nil
	}
}

// WithPorts appends ports to the algorithm's own ports. Plugins declare
// all their control ports this way.
func WithPorts(specs ...port.Spec) TemplateOption {
	return func(cfg *templateConfig) error {
		cfg.extra = append(cfg.extra, specs...)
		return nil
	}
}

// NewTemplate creates a template for alg as registered in reg.
func NewTemplate(reg *Registry, name string, alg Algorithm, opts ...TemplateOption) (*Template, error) {
	if reg == nil {
		return nil, errors.New("recall: nil registry")
	}
	def, ok := reg.Lookup(alg)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, alg)
	}

	cfg := templateConfig{stage: def.Stage}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	specs := make([]port.Spec, 0, len(def.Ports)+len(cfg.extra))
	specs = append(specs, def.Ports...)
	specs = append(specs, cfg.extra...)
	ports, err := port.NewSet(specs...)
	if err != nil {
		return nil, fmt.Errorf("recall: template %q: %w", name, err)
	}

	return &Template{
		name:      name,
		algorithm: alg,
		ports:     ports,
		stage:     cfg.stage,
		factory:   def.New,
		bound:     make(map[scope.RecallID]*Instance),
	}, nil
}

// Name returns the template name.
func (t *Template) Name() string { return t.name }

// Algorithm returns the algorithm tag.
func (t *Template) Algorithm() Algorithm { return t.algorithm }

// Ports returns the shared port set.
func (t *Template) Ports() *port.Set { return t.ports }

// Stage returns the position of the template's instances within a group.
func (t *Template) Stage() int { return t.stage }

// IsTemplate reports true.
func (t *Template) IsTemplate() bool { return true }

// Bound returns the live instance for id.
func (t *Template) Bound(id scope.RecallID) (*Instance, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	inst, ok := t.bound[id]
	return inst, ok
}

// BoundCount returns the number of live instances.
func (t *Template) BoundCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.bound)
}

func (t *Template) bind(inst *Instance) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.bound[inst.id]; exists {
		return fmt.Errorf("%w: %s %s", ErrAlreadyBound, t.name, inst.id)
	}
	t.bound[inst.id] = inst
	return nil
}

func (t *Template) release(inst *Instance) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bound[inst.id] == inst {
		delete(t.bound, inst.id)
	}
}
