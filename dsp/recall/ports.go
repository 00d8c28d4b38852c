package recall

import (
	"fmt"

	"github.com/cwbudde/algo-recall/dsp/port"
	"github.com/cwbudde/algo-recall/dsp/synth"
)

// Envelope ports.
const (
	PortUseNoteLength  = "use-note-length"
	PortUseFixedLength = "use-fixed-length"
	PortFixedLength    = "fixed-length"
)

// Raven synth ports. Indexed ports are named by SeqTuningPort,
// SeqVolumePort and the Sync*Port helpers.
const (
	PortWaveform           = "waveform"
	PortFrequency          = "frequency"
	PortUseNoteKey         = "use-note-key"
	PortPhase              = "phase"
	PortVolume             = "volume"
	PortTuning             = "tuning"
	PortLFOFrequency       = "lfo-frequency"
	PortLFODepth           = "lfo-depth"
	PortLFOTuning          = "lfo-tuning"
	PortSeqTuningFrequency = "seq-tuning-frequency"
	PortSeqTuningPingPong  = "seq-tuning-pingpong"
	PortSeqVolumeFrequency = "seq-volume-frequency"
	PortSeqVolumePingPong  = "seq-volume-pingpong"
	PortSyncEnabled        = "sync-enabled"
	PortVibratoEnabled     = "vibrato-enabled"
	PortVibratoGain        = "vibrato-gain"
	PortVibratoLFODepth    = "vibrato-lfo-depth"
	PortVibratoLFOFreq     = "vibrato-lfo-frequency"
	PortVibratoTuning      = "vibrato-tuning"
	PortNote256thMode      = "note-256th-mode"
)

// Playback ports.
const (
	PortGain = "gain"
)

// SeqTuningPort names tuning sequencer step i.
func SeqTuningPort(i int) string { return fmt.Sprintf("seq-tuning-%d", i) }

// SeqVolumePort names volume sequencer step i.
func SeqVolumePort(i int) string { return fmt.Sprintf("seq-volume-%d", i) }

// SyncRelativeAttackFactorPort names the attack factor of sync slot i.
func SyncRelativeAttackFactorPort(i int) string {
	return fmt.Sprintf("sync-relative-attack-factor-%d", i)
}

// SyncAttackPort names the attack of sync slot i.
func SyncAttackPort(i int) string { return fmt.Sprintf("sync-attack-%d", i) }

// SyncPhasePort names the phase of sync slot i.
func SyncPhasePort(i int) string { return fmt.Sprintf("sync-phase-%d", i) }

type syncPortNames struct {
	factor, attack, phase string
}

// Indexed port names, built once so configuring a voice does not format
// strings on every tick.
var (
	seqTuningPorts [synth.SeqSteps]string
	seqVolumePorts [synth.SeqSteps]string
	syncPorts      [synth.SyncSlots]syncPortNames
)

func init() {
	for i := range synth.SeqSteps {
		seqTuningPorts[i] = SeqTuningPort(i)
		seqVolumePorts[i] = SeqVolumePort(i)
	}
	for i := range synth.SyncSlots {
		syncPorts[i] = syncPortNames{
			factor: SyncRelativeAttackFactorPort(i),
			attack: SyncAttackPort(i),
			phase:  SyncPhasePort(i),
		}
	}
}

func double(name string, def float64) port.Spec {
	return port.Spec{Name: name, Kind: port.KindDouble, Default: port.Double(def)}
}

func boolean(name string, def bool) port.Spec {
	return port.Spec{Name: name, Kind: port.KindBool, Default: port.Bool(def)}
}

func envelopePorts() []port.Spec {
	return []port.Spec{
		boolean(PortUseNoteLength, true),
		boolean(PortUseFixedLength, false),
		{Name: PortFixedLength, Kind: port.KindUint64},
	}
}

func ravenPorts() []port.Spec {
	specs := []port.Spec{
		{Name: PortWaveform, Kind: port.KindInt64, Default: port.Int64(int64(synth.WaveSine))},
		double(PortFrequency, 440),
		boolean(PortUseNoteKey, false),
		double(PortPhase, 0),
		double(PortVolume, 1),
		double(PortTuning, 0),
		double(PortLFOFrequency, 0),
		double(PortLFODepth, 0),
		double(PortLFOTuning, 0),
		double(PortSeqTuningFrequency, 0),
		boolean(PortSeqTuningPingPong, false),
		double(PortSeqVolumeFrequency, 0),
		boolean(PortSeqVolumePingPong, false),
		boolean(PortSyncEnabled, false),
		boolean(PortVibratoEnabled, false),
		double(PortVibratoGain, 0),
		double(PortVibratoLFODepth, 0),
		double(PortVibratoLFOFreq, 0),
		double(PortVibratoTuning, 0),
		boolean(PortNote256thMode, false),
	}
	for i := range synth.SeqSteps {
		specs = append(specs, double(seqTuningPorts[i], 0), double(seqVolumePorts[i], 0))
	}
	for i := range synth.SyncSlots {
		specs = append(specs,
			double(syncPorts[i].factor, 0),
			double(syncPorts[i].attack, 0),
			double(syncPorts[i].phase, 0),
		)
	}
	return specs
}

func playbackPorts() []port.Spec {
	return []port.Spec{double(PortGain, 1)}
}
