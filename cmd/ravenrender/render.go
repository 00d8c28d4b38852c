package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-recall/dsp/core"
	"github.com/cwbudde/algo-recall/dsp/engine"
	"github.com/cwbudde/algo-recall/dsp/note"
	"github.com/cwbudde/algo-recall/dsp/port"
	"github.com/cwbudde/algo-recall/dsp/recall"
	"github.com/cwbudde/algo-recall/dsp/synth"
)

type lanePatch struct {
	voice   voice
	osc     *recall.Template
	env     *recall.Template
	stream  *recall.Template
	pending []note.Note
}

// render plays every note of s through the engine and returns the mono
// mixdown. Each note starts its own run on the tick its beat step is
// reached.
func render(ctx context.Context, s scene, logger *slog.Logger, maxTicks int) ([]float64, *engine.Engine, error) {
	var (
		out     []float64
		started = map[*engine.Run]int{}
	)
	mix := func(run *engine.Run) {
		start := started[run]
		for _, lane := range run.Lanes() {
			in, _ := run.Input(lane)
			for _, sig := range run.Signals(in) {
				out = core.AddAt(out, start, sig.Samples())
			}
		}
		delete(started, run)
	}

	e, err := engine.New(
		engine.WithProcessor(s.processorOptions()...),
		engine.WithLogger(logger),
		engine.WithFinishHook(mix),
	)
	if err != nil {
		return nil, nil, err
	}

	patches, err := buildPatches(e, s)
	if err != nil {
		return nil, nil, err
	}

	bufferSize := e.Config().BufferSize
	for tick := 0; maxTicks <= 0 || tick < maxTicks; tick++ {
		idle := e.Idle()
		pending := false
		for _, p := range patches {
			for len(p.pending) > 0 && p.pending[0].X0 <= e.Transport().Offset {
				n := p.pending[0]
				p.pending = p.pending[1:]
				run, err := startNote(e, p, &n)
				if err != nil {
					return nil, nil, err
				}
				started[run] = int(e.Serial()) * bufferSize
				idle = false
			}
			pending = pending || len(p.pending) > 0
		}
		if idle && !pending {
			return out, e, nil
		}
		if err := e.Tick(ctx); err != nil {
			return nil, nil, err
		}
	}
	return out, e, fmt.Errorf("scene still playing after %d ticks", maxTicks)
}

func buildPatches(e *engine.Engine, s scene) ([]*lanePatch, error) {
	var patches []*lanePatch
	var templates []*recall.Template
	for _, v := range s.Voices {
		if _, err := e.AddLane(v.Lane); err != nil {
			return nil, err
		}
		p := &lanePatch{voice: v, pending: v.Notes}
		var err error
		if p.osc, err = e.NewTemplate(v.Lane.String()+"/osc", recall.AlgorithmRavenSynth); err != nil {
			return nil, err
		}
		if p.env, err = e.NewTemplate(v.Lane.String()+"/env", recall.AlgorithmEnvelope); err != nil {
			return nil, err
		}
		if p.stream, err = e.NewTemplate(v.Lane.String()+"/stream", recall.AlgorithmStream); err != nil {
			return nil, err
		}

		w, _ := synth.ParseWaveform(v.waveformName())
		ports := p.osc.Ports()
		if err := ports.Write(recall.PortWaveform, port.Int64(int64(w))); err != nil {
			return nil, err
		}
		if v.Frequency > 0 {
			err = ports.Write(recall.PortFrequency, port.Double(v.Frequency))
		} else {
			err = ports.Write(recall.PortUseNoteKey, port.Bool(true))
		}
		if err != nil {
			return nil, err
		}
		if v.Volume != nil {
			if err := ports.Write(recall.PortVolume, port.Double(*v.Volume)); err != nil {
				return nil, err
			}
		}

		patches = append(patches, p)
		templates = append(templates, p.osc, p.env)
	}

	if s.Preset != nil {
		if err := s.Preset.Apply(templates...); err != nil {
			return nil, err
		}
	}
	return patches, nil
}

func startNote(e *engine.Engine, p *lanePatch, n *note.Note) (*engine.Run, error) {
	run, err := e.StartRun(p.voice.Lane)
	if err != nil {
		return nil, err
	}
	in, _ := run.Input(p.voice.Lane)
	for _, tmpl := range []*recall.Template{p.osc, p.env, p.stream} {
		if _, err := e.Duplicate(run, tmpl, in); err != nil {
			return nil, err
		}
	}
	if _, err := e.AddNote(in, n); err != nil {
		e.StopRun(run)
		return nil, err
	}
	return run, nil
}
