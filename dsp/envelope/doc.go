// Package envelope implements the sample-accurate ADSR kernel.
//
// A note's attack, decay, sustain and release pairs are laid out as four
// consecutive linear segments over the note's frame count. Each segment
// ramps the amplitude multiplier from a running baseline (the note ratio
// plus the deltas of the preceding segments) by its own delta. Applying
// the envelope to a buffer slice multiplies only the frames that fall
// inside a segment; frames outside the note are left untouched.
//
// The kernel is not idempotent: applying it twice to the same slice
// applies the ramp twice. Callers apply it exactly once per tick.
package envelope
