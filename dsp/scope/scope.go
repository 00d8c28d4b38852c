// Package scope identifies playback and recording runs.
//
// A run is a tree of GroupIDs: one audio-scope root fanning out into
// output-scope children, each of which may fan out into input-scope
// children. A RecallID pairs a GroupID with the lane of the recycling the
// run is processing.
package scope

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Scope is the level of a GroupID in its run tree.
type Scope int

const (
	ScopeAudio Scope = iota + 1
	ScopeOutput
	ScopeInput
)

func (s Scope) String() string {
	switch s {
	case ScopeAudio:
		return "audio"
	case ScopeOutput:
		return "output"
	case ScopeInput:
		return "input"
	default:
		return "invalid"
	}
}

var (
	// ErrOrphan is returned for groups whose ancestor chain does not end in
	// an audio-scope root.
	ErrOrphan = errors.New("orphaned group")
	// ErrScopeOrder is returned when a child is not strictly below its parent.
	ErrScopeOrder = errors.New("child scope must be below parent scope")
)

// GroupID identifies one run at one scope level.
type GroupID struct {
	serial uint64
	scope  Scope
	parent *GroupID

	mu       sync.Mutex
	children []*GroupID
}

// Serial returns the allocator-unique serial number.
func (g *GroupID) Serial() uint64 { return g.serial }

// Scope returns the level of the group.
func (g *GroupID) Scope() Scope { return g.scope }

// Parent returns the parent group, nil for roots.
func (g *GroupID) Parent() *GroupID { return g.parent }

// Children returns a snapshot of the child groups.
func (g *GroupID) Children() []*GroupID {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*GroupID, len(g.children))
	copy(out, g.children)
	return out
}

// Root walks up to the top of the tree.
func (g *GroupID) Root() *GroupID {
	r := g
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Depth returns the number of ancestors.
func (g *GroupID) Depth() int {
	d := 0
	for p := g.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// IsAncestorOf reports whether g is a strict ancestor of other.
func (g *GroupID) IsAncestorOf(other *GroupID) bool {
	if other == nil {
		return false
	}
	for p := other.parent; p != nil; p = p.parent {
		if p == g {
			return true
		}
	}
	return false
}

// Validate checks that the ancestor chain ends in an audio-scope root and
// that scopes strictly increase from root to leaf.
func (g *GroupID) Validate() error {
	if g == nil {
		return fmt.Errorf("%w: nil group", ErrOrphan)
	}
	for c := g; c.parent != nil; c = c.parent {
		if c.scope <= c.parent.scope {
			return fmt.Errorf("%w: %s under %s", ErrScopeOrder, c.scope, c.parent.scope)
		}
	}
	if root := g.Root(); root.scope != ScopeAudio {
		return fmt.Errorf("%w: group %d roots at %s scope", ErrOrphan, g.serial, root.scope)
	}
	return nil
}

// PostOrder visits every group of the subtree, children before parents.
func (g *GroupID) PostOrder(fn func(*GroupID)) {
	for _, c := range g.Children() {
		c.PostOrder(fn)
	}
	fn(g)
}

func (g *GroupID) String() string {
	return fmt.Sprintf("%s#%d", g.scope, g.serial)
}

// Allocator hands out GroupIDs with unique serial numbers. One allocator
// belongs to one engine context.
type Allocator struct {
	next atomic.Uint64
}

// NewRoot allocates an audio-scope root.
func (a *Allocator) NewRoot() *GroupID {
	return &GroupID{serial: a.next.Add(1), scope: ScopeAudio}
}

// NewDetached allocates a parentless group at scope s. Only audio-scope
// roots validate; other detached groups are orphans.
func (a *Allocator) NewDetached(s Scope) *GroupID {
	return &GroupID{serial: a.next.Add(1), scope: s}
}

// NewChild allocates a child of parent at scope s.
func (a *Allocator) NewChild(parent *GroupID, s Scope) (*GroupID, error) {
	if parent == nil {
		return nil, fmt.Errorf("%w: nil parent", ErrOrphan)
	}
	if s <= parent.scope || s > ScopeInput {
		return nil, fmt.Errorf("%w: %s under %s", ErrScopeOrder, s, parent.scope)
	}

	child := &GroupID{serial: a.next.Add(1), scope: s, parent: parent}
	parent.mu.Lock()
	parent.children = append(parent.children, child)
	parent.mu.Unlock()
	return child, nil
}
