package recall

import (
	"github.com/cwbudde/algo-recall/dsp/port"
	"github.com/cwbudde/algo-recall/dsp/recycling"
	"github.com/cwbudde/algo-recall/dsp/synth"
)

type ravenKernel struct {
	voices map[*recycling.AudioSignal]*synth.Raven
}

func newRavenKernel(_ *Instance) (Kernel, error) {
	return &ravenKernel{voices: make(map[*recycling.AudioSignal]*synth.Raven)}, nil
}

// configure copies the port values into r. The generator state is kept.
func configureRaven(r *synth.Raven, ports *port.Set, sig *recycling.AudioSignal, frames256th float64) {
	read := func(name string) *port.Port { return ports.Lookup(name) }

	r.Waveform = synth.Waveform(read(PortWaveform).Int64())
	r.SampleRate = sig.SampleRate()
	r.Frequency = read(PortFrequency).Float64()
	if read(PortUseNoteKey).Bool() && sig.Note != nil {
		r.Frequency = sig.Note.Frequency()
	}
	r.Phase = read(PortPhase).Float64()
	r.Volume = read(PortVolume).Float64()
	r.Tuning = read(PortTuning).Float64()
	r.LFO = synth.LFO{
		Frequency: read(PortLFOFrequency).Float64(),
		Depth:     read(PortLFODepth).Float64(),
		Tuning:    read(PortLFOTuning).Float64(),
	}

	r.SeqTuning.Frequency = read(PortSeqTuningFrequency).Float64()
	r.SeqTuning.PingPong = read(PortSeqTuningPingPong).Bool()
	r.SeqVolume.Frequency = read(PortSeqVolumeFrequency).Float64()
	r.SeqVolume.PingPong = read(PortSeqVolumePingPong).Bool()
	for i := range synth.SeqSteps {
		r.SeqTuning.Steps[i] = read(seqTuningPorts[i]).Float64()
		r.SeqVolume.Steps[i] = read(seqVolumePorts[i]).Float64()
	}

	r.SyncEnabled = read(PortSyncEnabled).Bool()
	for i := range synth.SyncSlots {
		r.Sync[i] = synth.SyncSlot{
			RelativeAttackFactor: read(syncPorts[i].factor).Float64(),
			Attack:               read(syncPorts[i].attack).Float64(),
			Phase:                read(syncPorts[i].phase).Float64(),
		}
	}

	r.VibratoEnabled = read(PortVibratoEnabled).Bool()
	r.Vibrato = synth.Vibrato{
		Gain:         read(PortVibratoGain).Float64(),
		LFODepth:     read(PortVibratoLFODepth).Float64(),
		LFOFrequency: read(PortVibratoLFOFreq).Float64(),
		Tuning:       read(PortVibratoTuning).Float64(),
	}

	r.Note256thMode = read(PortNote256thMode).Bool()
	r.Frames256th = frames256th
}

// Run mixes the voice of every run signal into its current block.
func (k *ravenKernel) Run(inst *Instance, _ Tick) (bool, error) {
	cfg := inst.Config()
	ports := inst.Ports()

	signals := inst.Signals()
	for _, sig := range signals {
		block, first, ok := sig.Current()
		if !ok {
			continue
		}
		n := min(len(block), sig.FrameCount()-first)
		if n <= 0 {
			continue
		}

		r, exists := k.voices[sig]
		if !exists {
			r = &synth.Raven{Offset: uint64(first)}
			k.voices[sig] = r
		}
		configureRaven(r, ports, sig, cfg.Frames256th())
		if err := synth.Mix(r, sig.Format(), block[:n], n); err != nil {
			return false, err
		}
		inst.FrameCount = max(inst.FrameCount, sig.FrameCount())
	}

	pruneSignals(k.voices, signals)
	return false, nil
}
