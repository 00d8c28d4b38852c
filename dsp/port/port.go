package port

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrKindMismatch is returned when a value cannot be stored in a port.
	ErrKindMismatch = errors.New("port kind mismatch")
	// ErrUnknownPort is returned by lookups of unregistered port names.
	ErrUnknownPort = errors.New("unknown port")
)

// Spec describes a port to be created for a template.
type Spec struct {
	Name    string
	Kind    Kind
	Default Value
}

// Port is a named, typed value cell.
type Port struct {
	name string
	kind Kind

	mu    sync.RWMutex
	value Value
}

// New creates a port holding def converted to kind.
func New(name string, kind Kind, def Value) (*Port, error) {
	if name == "" {
		return nil, errors.New("port: empty name")
	}
	if kind < KindBool || kind > KindPointer {
		return nil, fmt.Errorf("port %q: invalid kind %d", name, kind)
	}

	if def.Kind() == 0 {
		def = zero(kind)
	}
	v, err := def.Convert(kind)
	if err != nil {
		return nil, fmt.Errorf("port %q: default: %w", name, err)
	}

	return &Port{name: name, kind: kind, value: v}, nil
}

// FromSpec creates a port from its description.
func FromSpec(s Spec) (*Port, error) {
	return New(s.Name, s.Kind, s.Default)
}

func zero(k Kind) Value {
	switch k {
	case KindBool:
		return Bool(false)
	case KindInt64:
		return Int64(0)
	case KindUint64:
		return Uint64(0)
	case KindDouble:
		return Double(0)
	default:
		return Pointer(nil)
	}
}

// Name returns the port name.
func (p *Port) Name() string { return p.name }

// Kind returns the port kind.
func (p *Port) Kind() Kind { return p.kind }

// SafeRead copies the current value.
func (p *Port) SafeRead() Value {
	p.mu.RLock()
	v := p.value
	p.mu.RUnlock()
	return v
}

// SafeWrite stores v, converting numeric kinds to the port kind.
func (p *Port) SafeWrite(v Value) error {
	c, err := v.Convert(p.kind)
	if err != nil {
		return fmt.Errorf("port %q: %w", p.name, err)
	}

	p.mu.Lock()
	p.value = c
	p.mu.Unlock()
	return nil
}

// Float64 is a shorthand for SafeRead().AsFloat64().
func (p *Port) Float64() float64 { return p.SafeRead().AsFloat64() }

// Bool is a shorthand for SafeRead().AsBool().
func (p *Port) Bool() bool { return p.SafeRead().AsBool() }

// Uint64 is a shorthand for SafeRead().AsUint64().
func (p *Port) Uint64() uint64 { return p.SafeRead().AsUint64() }

// Int64 is a shorthand for SafeRead().AsInt64().
func (p *Port) Int64() int64 { return p.SafeRead().AsInt64() }

// Set holds an ordered collection of ports addressable by name.
type Set struct {
	order  []*Port
	byName map[string]*Port
}

// NewSet builds a set from specs, rejecting duplicate names.
func NewSet(specs ...Spec) (*Set, error) {
	s := &Set{byName: make(map[string]*Port, len(specs))}
	for _, spec := range specs {
		if _, exists := s.byName[spec.Name]; exists {
			return nil, fmt.Errorf("port %q: duplicate name", spec.Name)
		}
		p, err := FromSpec(spec)
		if err != nil {
			return nil, err
		}
		s.order = append(s.order, p)
		s.byName[p.name] = p
	}
	return s, nil
}

// Len returns the number of ports.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// All returns the ports in declaration order.
func (s *Set) All() []*Port {
	if s == nil {
		return nil
	}
	return s.order
}

// Lookup returns the named port, or nil.
func (s *Set) Lookup(name string) *Port {
	if s == nil {
		return nil
	}
	return s.byName[name]
}

// Read returns the value of the named port.
func (s *Set) Read(name string) (Value, error) {
	p := s.Lookup(name)
	if p == nil {
		return Value{}, fmt.Errorf("%w: %s", ErrUnknownPort, name)
	}
	return p.SafeRead(), nil
}

// Write stores v into the named port.
func (s *Set) Write(name string, v Value) error {
	p := s.Lookup(name)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrUnknownPort, name)
	}
	return p.SafeWrite(v)
}
