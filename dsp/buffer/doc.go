// Package buffer provides the fixed-size sample blocks that make up an
// audio signal stream, plus a pool that recycles them between runs.
// Kernels accept raw []float64 slices; Buffer only manages ownership
// and reuse.
package buffer
