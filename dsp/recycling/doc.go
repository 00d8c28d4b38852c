// Package recycling owns the sample memory of the runtime.
//
// A Recycling holds the audio signals of one channel lane: an optional
// template signal (a prototype that is copied, never consumed) and the
// live signals created for running RecallIDs. A Chain is the arena of all
// recyclings, addressed by index so walking from a first to a last
// recycling is plain index arithmetic.
package recycling
