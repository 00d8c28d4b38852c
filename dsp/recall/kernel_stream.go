package recall

import "github.com/cwbudde/algo-recall/dsp/recycling"

// streamKernel owns the signal cursors of a run. It finishes once every
// run signal is exhausted.
type streamKernel struct{}

func newStreamKernel(_ *Instance) (Kernel, error) { return streamKernel{}, nil }

func (streamKernel) Run(inst *Instance, _ Tick) (bool, error) {
	done := true
	for _, sig := range inst.Signals() {
		inst.FrameCount = max(inst.FrameCount, sig.FrameCount())
		if sig.Advance() {
			done = false
		}
	}
	return done, nil
}

// playbackKernel plays the recycling template into a run signal it
// allocates on its first tick. It owns the cursor of that signal and
// finishes after its last block.
type playbackKernel struct {
	signal *recycling.AudioSignal
}

func newPlaybackKernel(_ *Instance) (Kernel, error) { return &playbackKernel{}, nil }

func (k *playbackKernel) Run(inst *Instance, _ Tick) (bool, error) {
	rc := inst.Recycling()
	tmpl := rc.Template()
	if tmpl == nil {
		return true, nil
	}
	if k.signal == nil {
		sig, err := rc.CreateAudioSignalWithFrameCount(inst.RecallID(), tmpl.FrameCount())
		if err != nil {
			return false, err
		}
		k.signal = sig
		inst.FrameCount = sig.FrameCount()
	}

	block, _, ok := k.signal.Current()
	if !ok {
		return true, nil
	}
	src := tmpl.Block(k.signal.StreamCurrent())
	gain := inst.Ports().Lookup(PortGain).Float64()
	for i := range block {
		if i < len(src) {
			block[i] = gain * src[i]
		} else {
			block[i] = 0
		}
	}
	return !k.signal.Advance(), nil
}

// pluginKernel exposes control ports only.
type pluginKernel struct{}

func newPluginKernel(_ *Instance) (Kernel, error) { return pluginKernel{}, nil }

func (pluginKernel) Run(*Instance, Tick) (bool, error) { return false, nil }
