package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-recall/dsp/core"
)

func ExampleApplyProcessorOptions() {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(48000),
		core.WithBufferSize(500),
		core.WithBPM(120),
	)

	fmt.Printf("sampleRate=%.0f bufferSize=%d delay=%.1f\n", cfg.SampleRate, cfg.BufferSize, cfg.Delay())

	// Output:
	// sampleRate=48000 bufferSize=500 delay=12.0
}

func ExampleAddAt() {
	mix := core.AddAt(nil, 0, []float64{1, 1})
	mix = core.AddAt(mix, 1, []float64{2, 2, 2})
	fmt.Println(mix)

	// Output:
	// [1 3 2 2]
}
