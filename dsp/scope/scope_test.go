package scope

import (
	"errors"
	"testing"
)

func TestTreeConstruction(t *testing.T) {
	var a Allocator
	root := a.NewRoot()
	out, err := a.NewChild(root, ScopeOutput)
	if err != nil {
		t.Fatalf("NewChild(output) error = %v", err)
	}
	in, err := a.NewChild(out, ScopeInput)
	if err != nil {
		t.Fatalf("NewChild(input) error = %v", err)
	}

	if in.Root() != root {
		t.Fatal("input child must root at the audio group")
	}
	if in.Depth() != 2 {
		t.Fatalf("Depth() = %d, want 2", in.Depth())
	}
	if !root.IsAncestorOf(in) || in.IsAncestorOf(root) {
		t.Fatal("ancestry mismatch")
	}
	if err := in.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if root.Serial() == out.Serial() || out.Serial() == in.Serial() {
		t.Fatal("serials must be unique")
	}
}

func TestNewChildScopeOrder(t *testing.T) {
	var a Allocator
	root := a.NewRoot()
	in, _ := a.NewChild(root, ScopeInput)

	tests := []struct {
		name   string
		parent *GroupID
		scope  Scope
	}{
		{name: "audio under audio", parent: root, scope: ScopeAudio},
		{name: "output under input", parent: in, scope: ScopeOutput},
		{name: "invalid scope", parent: root, scope: Scope(9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.NewChild(tt.parent, tt.scope); !errors.Is(err, ErrScopeOrder) {
				t.Fatalf("error = %v, want ErrScopeOrder", err)
			}
		})
	}
	if _, err := a.NewChild(nil, ScopeOutput); !errors.Is(err, ErrOrphan) {
		t.Fatalf("error = %v, want ErrOrphan", err)
	}
}

func TestValidateOrphan(t *testing.T) {
	var a Allocator
	orphan := a.NewDetached(ScopeOutput)
	child, _ := a.NewChild(orphan, ScopeInput)

	if err := orphan.Validate(); !errors.Is(err, ErrOrphan) {
		t.Fatalf("Validate() error = %v, want ErrOrphan", err)
	}
	if err := child.Validate(); !errors.Is(err, ErrOrphan) {
		t.Fatalf("Validate() error = %v, want ErrOrphan", err)
	}
}

func TestPostOrder(t *testing.T) {
	var a Allocator
	root := a.NewRoot()
	o1, _ := a.NewChild(root, ScopeOutput)
	o2, _ := a.NewChild(root, ScopeOutput)
	i1, _ := a.NewChild(o1, ScopeInput)

	pos := map[*GroupID]int{}
	n := 0
	root.PostOrder(func(g *GroupID) {
		pos[g] = n
		n++
	})
	if n != 4 {
		t.Fatalf("visited %d groups, want 4", n)
	}
	if pos[i1] > pos[o1] || pos[o1] > pos[root] || pos[o2] > pos[root] {
		t.Fatalf("children must precede parents: %v", pos)
	}
}

func TestRecallID(t *testing.T) {
	var a Allocator
	var tmpl RecallID
	if !tmpl.IsZero() {
		t.Fatal("zero RecallID must be a template id")
	}
	id := RecallID{Group: a.NewRoot(), Lane: Lane{Channel: 1, Line: 2}}
	if id.IsZero() {
		t.Fatal("run id reported as template")
	}
	if id.String() != "audio#1@1:2" {
		t.Fatalf("String() = %q", id.String())
	}
	other := RecallID{Group: id.Group, Lane: Lane{Channel: 1, Line: 2}}
	if other != id {
		t.Fatal("RecallID must be comparable by value")
	}
}
