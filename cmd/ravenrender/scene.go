package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/cwbudde/algo-recall/dsp/core"
	"github.com/cwbudde/algo-recall/dsp/note"
	"github.com/cwbudde/algo-recall/dsp/preset"
	"github.com/cwbudde/algo-recall/dsp/scope"
	"github.com/cwbudde/algo-recall/dsp/synth"
)

// scene is the JSON description of a rendering job.
type scene struct {
	SampleRate float64 `json:"sampleRate"`
	BufferSize int     `json:"bufferSize"`
	BPM        float64 `json:"bpm"`
	Format     string  `json:"format"`
	Voices     []voice `json:"voices"`
	// Preset is applied to the templates named "<channel>:<line>/osc" and
	// "<channel>:<line>/env". Its notes are added to the voice of their lane.
	Preset *preset.Snapshot `json:"preset,omitempty"`
}

type voice struct {
	Lane      scope.Lane  `json:"lane"`
	Waveform  string      `json:"waveform"`
	Volume    *float64    `json:"volume,omitempty"`
	Frequency float64     `json:"frequency,omitempty"`
	Notes     []note.Note `json:"notes"`
}

func defaultScene() scene {
	return scene{
		SampleRate: 48000,
		BufferSize: 512,
		BPM:        120,
		Format:     "s16",
		Voices: []voice{{
			Waveform: "sine",
			Notes: []note.Note{{
				X0:      0,
				X1:      16,
				Y:       note.A4Key,
				Attack:  note.Complex{Real: 0.05, Imag: 1},
				Decay:   note.Complex{Real: 0.1, Imag: -0.3},
				Sustain: note.Complex{Real: 0.65},
				Release: note.Complex{Real: 0.2, Imag: -0.7},
			}},
		}},
	}
}

func parseScene(r io.Reader) (scene, error) {
	s := scene{}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return scene{}, fmt.Errorf("invalid scene json: %w", err)
	}
	if len(s.Voices) == 0 {
		return scene{}, errors.New("scene has no voices")
	}
	seen := make(map[scope.Lane]bool, len(s.Voices))
	for i, v := range s.Voices {
		if seen[v.Lane] {
			return scene{}, fmt.Errorf("voice %d: lane %s used twice", i, v.Lane)
		}
		seen[v.Lane] = true
		if s.Preset != nil {
			s.Voices[i].Notes = append(s.Voices[i].Notes, s.Preset.NotesFor(v.Lane)...)
		}
		if _, ok := synth.ParseWaveform(v.waveformName()); !ok {
			return scene{}, fmt.Errorf("voice %d: unknown waveform %q", i, v.Waveform)
		}
		sort.SliceStable(s.Voices[i].Notes, func(a, b int) bool {
			return s.Voices[i].Notes[a].X0 < s.Voices[i].Notes[b].X0
		})
	}
	if s.Format != "" {
		if _, ok := core.ParseFormat(s.Format); !ok {
			return scene{}, fmt.Errorf("unknown sample format %q", s.Format)
		}
	}
	return s, nil
}

func (v voice) waveformName() string {
	if v.Waveform == "" {
		return synth.WaveSine.String()
	}
	return v.Waveform
}

func (s scene) processorOptions() []core.ProcessorOption {
	opts := []core.ProcessorOption{
		core.WithSampleRate(s.SampleRate),
		core.WithBufferSize(s.BufferSize),
		core.WithBPM(s.BPM),
	}
	if f, ok := core.ParseFormat(s.Format); ok {
		opts = append(opts, core.WithFormat(f))
	}
	return opts
}
