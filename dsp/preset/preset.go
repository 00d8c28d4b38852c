// Package preset snapshots template port values and notes as JSON.
//
// Pointer ports hold opaque runtime data and are not captured.
package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/cwbudde/algo-recall/dsp/note"
	"github.com/cwbudde/algo-recall/dsp/port"
	"github.com/cwbudde/algo-recall/dsp/recall"
	"github.com/cwbudde/algo-recall/dsp/scope"
)

// ErrUnknownTemplate is returned when a snapshot names a template that was
// not passed to Apply.
var ErrUnknownTemplate = errors.New("preset: unknown template")

// PortState is the persisted value of one port.
type PortState struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// TemplateState is the persisted state of one template.
type TemplateState struct {
	Name      string      `json:"name"`
	Algorithm string      `json:"algorithm"`
	Ports     []PortState `json:"ports"`
}

// LaneNotes holds the notes of one lane.
type LaneNotes struct {
	Lane  scope.Lane  `json:"lane"`
	Notes []note.Note `json:"notes"`
}

// Snapshot is the persisted state of a set of templates and notes.
type Snapshot struct {
	Templates []TemplateState `json:"templates"`
	Notes     []LaneNotes     `json:"notes,omitempty"`
}

// Capture records the current port values of templates.
func Capture(templates ...*recall.Template) Snapshot {
	var s Snapshot
	for _, t := range templates {
		ts := TemplateState{Name: t.Name(), Algorithm: string(t.Algorithm())}
		for _, p := range t.Ports().All() {
			if p.Kind() == port.KindPointer {
				continue
			}
			ts.Ports = append(ts.Ports, PortState{
				Name:  p.Name(),
				Kind:  p.Kind().String(),
				Value: p.SafeRead().String(),
			})
		}
		s.Templates = append(s.Templates, ts)
	}
	return s
}

// AddNotes appends notes for lane.
func (s *Snapshot) AddNotes(lane scope.Lane, notes ...note.Note) {
	for i := range s.Notes {
		if s.Notes[i].Lane == lane {
			s.Notes[i].Notes = append(s.Notes[i].Notes, notes...)
			return
		}
	}
	s.Notes = append(s.Notes, LaneNotes{Lane: lane, Notes: notes})
}

// NotesFor returns the notes of lane.
func (s *Snapshot) NotesFor(lane scope.Lane) []note.Note {
	for _, ln := range s.Notes {
		if ln.Lane == lane {
			return ln.Notes
		}
	}
	return nil
}

// Apply writes the snapshot's port values into the templates with matching
// names. Every failure is reported; valid entries are applied regardless.
func (s Snapshot) Apply(templates ...*recall.Template) error {
	byName := make(map[string]*recall.Template, len(templates))
	for _, t := range templates {
		byName[t.Name()] = t
	}

	var errs []error
	for _, ts := range s.Templates {
		t, ok := byName[ts.Name]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownTemplate, ts.Name))
			continue
		}
		for _, ps := range ts.Ports {
			if err := applyPort(t.Ports(), ps); err != nil {
				errs = append(errs, fmt.Errorf("preset: %s: %w", ts.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}

func applyPort(ports *port.Set, ps PortState) error {
	kind, ok := port.ParseKind(ps.Kind)
	if !ok {
		return fmt.Errorf("port %s: unknown kind %q", ps.Name, ps.Kind)
	}
	v, err := port.ParseValue(kind, ps.Value)
	if err != nil {
		return err
	}
	return ports.Write(ps.Name, v)
}

// Encode writes s as indented JSON.
func Encode(w io.Writer, s Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("preset: encode: %w", err)
	}
	return nil
}

// Decode reads a snapshot.
func Decode(r io.Reader) (Snapshot, error) {
	var s Snapshot
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("preset: invalid json: %w", err)
	}
	return s, nil
}
