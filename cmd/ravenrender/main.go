// Command ravenrender renders a scene of synth voices through the recall
// engine and writes the result as a WAV file.
//
// Usage:
//
//	ravenrender [flags]
//
// Without -scene it renders a single enveloped A4 sine note.
//
// Examples:
//
//	ravenrender -o a4.wav
//	ravenrender -scene song.json -o song.wav
//	ravenrender -scene song.json -play
//	ravenrender -debug -ticks 2000
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/cwbudde/algo-recall/dsp/sink"
	"github.com/cwbudde/algo-recall/measure/tone"
)

func main() {
	scenePath := flag.String("scene", "", "scene JSON file (default: built-in A4 note)")
	outPath := flag.String("o", "", "output WAV file")
	ticks := flag.Int("ticks", 100000, "maximum number of engine ticks, 0 for unlimited")
	play := flag.Bool("play", false, "play the rendered audio")
	debug := flag.Bool("debug", false, "log engine diagnostics to stderr")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ravenrender [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Renders synth voices through the recall engine.\n")
		fmt.Fprintf(os.Stderr, "Prints a tone analysis of the mixdown.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  ravenrender -o a4.wav\n")
		fmt.Fprintf(os.Stderr, "  ravenrender -scene song.json -o song.wav\n")
		fmt.Fprintf(os.Stderr, "  ravenrender -scene song.json -play\n")
	}
	flag.Parse()

	if err := run(*scenePath, *outPath, *ticks, *play, *debug); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(scenePath, outPath string, maxTicks int, play, debug bool) error {
	s := defaultScene()
	if scenePath != "" {
		f, err := os.Open(scenePath)
		if err != nil {
			return err
		}
		s, err = parseScene(f)
		_ = f.Close()
		if err != nil {
			return err
		}
	}

	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mix, e, err := render(ctx, s, logger, maxTicks)
	if err != nil {
		return err
	}
	cfg := e.Config()

	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := sink.WriteWAV(f, cfg.SampleRate, cfg.Format, mix); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	if err := printSummary(os.Stdout, mix, cfg.SampleRate, e.Serial()); err != nil {
		return err
	}

	if play {
		return playSamples(ctx, mix, cfg.SampleRate)
	}
	return nil
}

func printSummary(w io.Writer, mix []float64, sampleRate float64, ticks uint64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Ticks\tFrames\tDuration [s]\n")
	fmt.Fprintf(tw, "%d\t%d\t%.3f\n", ticks, len(mix), float64(len(mix))/sampleRate)
	fmt.Fprintf(tw, "\n")

	res, err := tone.Analyze(mix, tone.Config{SampleRate: sampleRate})
	if err != nil {
		fmt.Fprintf(tw, "analysis\t%v\n", err)
		return tw.Flush()
	}
	fmt.Fprintf(tw, "Fundamental [Hz]\tLevel\tDC\tRMS\tPeak\n")
	fmt.Fprintf(tw, "----------------\t-----\t--\t---\t----\n")
	fmt.Fprintf(tw, "%.2f\t%.4f\t%.6f\t%.4f\t%.4f\n",
		res.FundamentalFreq, res.FundamentalLevel, res.DC, res.RMS, res.Peak)
	return tw.Flush()
}

func playSamples(ctx context.Context, mix []float64, sampleRate float64) error {
	sr := beep.SampleRate(int(sampleRate + 0.5))
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	defer speaker.Close()

	done := make(chan struct{})
	speaker.Play(beep.Seq(sink.FromSamples(mix), beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
	case <-ctx.Done():
		speaker.Clear()
	}
	return nil
}
