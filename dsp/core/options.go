package core

// ProcessorConfig defines the shared runtime settings every kernel reads:
// the soundcard clock (sample rate and buffer size), the sample format of
// audio signal streams and the musical tempo the transport counts against.
type ProcessorConfig struct {
	SampleRate  float64
	BufferSize  int
	Format      Format
	BPM         float64
	DelayFactor float64
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns defaults matching a typical soundcard setup.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate:  44100,
		BufferSize:  512,
		Format:      FormatDouble,
		BPM:         120,
		DelayFactor: 0.25,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBufferSize sets the number of frames processed per tick.
func WithBufferSize(bufferSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if bufferSize > 0 {
			cfg.BufferSize = bufferSize
		}
	}
}

// WithFormat sets the sample format of newly created audio signals.
func WithFormat(format Format) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if format.Valid() {
			cfg.Format = format
		}
	}
}

// WithBPM sets the tempo in beats per minute.
func WithBPM(bpm float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if bpm > 0 {
			cfg.BPM = bpm
		}
	}
}

// WithDelayFactor sets the delay factor; 0.25 makes one sequencer step a 16th note.
func WithDelayFactor(factor float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if factor > 0 {
			cfg.DelayFactor = factor
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Delay returns the number of ticks that make up one sequencer step.
// Returns 0 when the configuration cannot describe a clock.
func (cfg ProcessorConfig) Delay() float64 {
	if cfg.SampleRate <= 0 || cfg.BufferSize <= 0 || cfg.BPM <= 0 || cfg.DelayFactor <= 0 {
		return 0
	}

	return 60 * (cfg.SampleRate / float64(cfg.BufferSize)) / cfg.BPM * (1.0 / 16.0) * (1.0 / cfg.DelayFactor)
}

// StepFrames returns the number of frames covered by one sequencer step.
func (cfg ProcessorConfig) StepFrames() float64 {
	return cfg.Delay() * float64(cfg.BufferSize)
}

// Frames256th returns the number of frames covered by one 256th note.
func (cfg ProcessorConfig) Frames256th() float64 {
	if cfg.SampleRate <= 0 || cfg.BPM <= 0 {
		return 0
	}

	return 60 / cfg.BPM / 64 * cfg.SampleRate
}
