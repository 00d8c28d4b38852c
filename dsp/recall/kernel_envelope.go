package recall

import (
	"errors"

	"github.com/cwbudde/algo-recall/dsp/envelope"
	"github.com/cwbudde/algo-recall/dsp/recycling"
)

type envelopeKernel struct {
	env     *envelope.Envelope
	layouts map[*recycling.AudioSignal]envelope.Layout
	warned  bool
}

func newEnvelopeKernel(_ *Instance) (Kernel, error) {
	return &envelopeKernel{
		env:     envelope.New(),
		layouts: make(map[*recycling.AudioSignal]envelope.Layout),
	}, nil
}

func (k *envelopeKernel) mode(inst *Instance) envelope.Mode {
	ports := inst.Ports()
	return envelope.Mode{
		UseNoteLength:  ports.Lookup(PortUseNoteLength).Bool(),
		UseFixedLength: ports.Lookup(PortUseFixedLength).Bool(),
		FixedLength:    int(ports.Lookup(PortFixedLength).Uint64()),
	}
}

// Run shapes the current block of every run signal carrying a note.
func (k *envelopeKernel) Run(inst *Instance, _ Tick) (bool, error) {
	mode := k.mode(inst)
	cfg := inst.Config()

	signals := inst.Signals()
	for _, sig := range signals {
		if sig.Note == nil {
			continue
		}
		block, first, ok := sig.Current()
		if !ok {
			continue
		}

		layout, cached := k.layouts[sig]
		if !cached || layout.FrameCount == 0 {
			frames, err := mode.FrameCount(sig.Note, cfg.Delay(), cfg.BufferSize)
			if errors.Is(err, envelope.ErrFrameMode) {
				if !k.warned {
					inst.Logger().Warn("recall: envelope disabled",
						"recall", inst.Name(), "id", inst.RecallID().String(), "err", err)
					k.warned = true
				}
				return false, nil
			}
			layout = envelope.NewLayout(sig.Note, frames)
			k.layouts[sig] = layout
		}
		if layout.FrameCount == 0 {
			continue
		}
		inst.FrameCount = max(inst.FrameCount, layout.FrameCount)
		k.env.Apply(block, first, layout)
	}

	pruneSignals(k.layouts, signals)
	return false, nil
}

func pruneSignals[V any](m map[*recycling.AudioSignal]V, live []*recycling.AudioSignal) {
	if len(m) <= len(live) {
		return
	}
	keep := make(map[*recycling.AudioSignal]bool, len(live))
	for _, s := range live {
		keep[s] = true
	}
	for s := range m {
		if !keep[s] {
			delete(m, s)
		}
	}
}
