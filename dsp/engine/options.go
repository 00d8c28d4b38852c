package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-recall/dsp/core"
	"github.com/cwbudde/algo-recall/dsp/recall"
)

type config struct {
	processor []core.ProcessorOption
	logger    *slog.Logger
	registry  *recall.Registry
	maxFrames int
	loop      bool
	loopStart uint64
	loopEnd   uint64
	onFinish  func(*Run)
}

// Option configures New.
type Option func(*config) error

// WithProcessor sets the processor configuration.
func WithProcessor(opts ...core.ProcessorOption) Option {
	return func(cfg *config) error {
		cfg.processor = append(cfg.processor, opts...)
		return nil
	}
}

// WithLogger sets the diagnostic logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return errors.New("engine: nil logger")
		}
		cfg.logger = l
		return nil
	}
}

// WithRegistry sets the algorithm registry. The default is
// recall.DefaultRegistry.
func WithRegistry(r *recall.Registry) Option {
	return func(cfg *config) error {
		if r == nil {
			return errors.New("engine: nil registry")
		}
		cfg.registry = r
		return nil
	}
}

// WithMaxFrames limits the live frames of each recycling.
func WithMaxFrames(frames int) Option {
	return func(cfg *config) error {
		if frames < 0 {
			return fmt.Errorf("engine: max frames must be >= 0: %d", frames)
		}
		cfg.maxFrames = frames
		return nil
	}
}

// WithLoop makes the transport loop over beat steps [start, end).
func WithLoop(start, end uint64) Option {
	return func(cfg *config) error {
		if end <= start {
			return fmt.Errorf("engine: loop end %d must be after start %d", end, start)
		}
		cfg.loop = true
		cfg.loopStart = start
		cfg.loopEnd = end
		return nil
	}
}

// WithFinishHook registers fn to be called after the tick in which a run
// finished, before its signals are released.
func WithFinishHook(fn func(*Run)) Option {
	return func(cfg *config) error {
		cfg.onFinish = fn
		return nil
	}
}

func defaultConfig() config {
	return config{logger: slog.New(slog.DiscardHandler)}
}
