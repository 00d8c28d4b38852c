// Package synth implements the raven synth oscillator kernel.
//
// Raven is a resumable generator: every call continues from the absolute
// frame position stored in Offset, so rendering N frames and then M frames
// produces exactly the same samples as rendering N+M frames at once. The
// carrier phase is derived from the absolute position; modulation
// (16-step tuning and volume sequencers, a slow tuning LFO, vibrato and up
// to four hard-sync slots) accumulates in a separate phase term carried
// between calls.
//
// The kernel only writes strided sample values. A Codec per sample format
// (8/16/24/32/64-bit integer, float, double, complex) converts between the
// normalized [-1, 1] domain and the destination buffer.
package synth
