// Package recall instantiates effects per playback run.
//
// A Template describes an effect: its algorithm, its ports and its stage
// within a group. Duplicate binds a template to one RecallID and the
// recycling of that lane, producing an Instance with private run-state and
// kernel state but sharing the template's ports. RunOnce executes the
// instance kernel for one engine tick; Done ends it cooperatively.
//
// Kernels are looked up by algorithm in a Registry. DefaultRegistry
// provides the built-in envelope, raven-synth, playback, stream and plugin
// algorithms.
package recall
