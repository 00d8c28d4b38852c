package core

import "testing"

func TestApplyProcessorOptions(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(96000), WithBufferSize(2048), WithFormat(FormatS16), WithBPM(90))
	if cfg.SampleRate != 96000 {
		t.Fatalf("sample rate = %v, want 96000", cfg.SampleRate)
	}
	if cfg.BufferSize != 2048 {
		t.Fatalf("buffer size = %d, want 2048", cfg.BufferSize)
	}
	if cfg.Format != FormatS16 {
		t.Fatalf("format = %v, want s16", cfg.Format)
	}
	if cfg.BPM != 90 {
		t.Fatalf("bpm = %v, want 90", cfg.BPM)
	}
}

func TestInvalidOptionsIgnored(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(0), WithBufferSize(-1), WithFormat(Format(99)), WithBPM(-5), WithDelayFactor(0))
	def := DefaultProcessorConfig()
	if cfg != def {
		t.Fatalf("cfg = %#v, want %#v", cfg, def)
	}
}

func TestDelay(t *testing.T) {
	// 120 BPM, 16th steps: 0.125 s per step = 6000 frames at 48 kHz.
	cfg := ApplyProcessorOptions(WithSampleRate(48000), WithBufferSize(500), WithBPM(120))
	if got := cfg.Delay(); !NearlyEqual(got, 12, 1e-12) {
		t.Fatalf("Delay() = %v, want 12", got)
	}
	if got := cfg.StepFrames(); !NearlyEqual(got, 6000, 1e-9) {
		t.Fatalf("StepFrames() = %v, want 6000", got)
	}
	if got := cfg.Frames256th(); !NearlyEqual(got, 375, 1e-9) {
		t.Fatalf("Frames256th() = %v, want 375", got)
	}
}

func TestDelayInvalidConfig(t *testing.T) {
	cfg := ProcessorConfig{}
	if got := cfg.Delay(); got != 0 {
		t.Fatalf("Delay() = %v, want 0", got)
	}
}

func TestFormatNames(t *testing.T) {
	for _, f := range []Format{FormatS8, FormatS16, FormatS24, FormatS32, FormatS64, FormatFloat, FormatDouble, FormatComplex} {
		got, ok := ParseFormat(f.String())
		if !ok || got != f {
			t.Fatalf("ParseFormat(%q) = %v, %v", f.String(), got, ok)
		}
	}
	if Format(0).Valid() {
		t.Fatal("zero format must be invalid")
	}
}
