// Package port provides typed value cells shared between a recall template
// and all of its duplicates.
//
// Ports are the only state touched from several threads without an owner:
// the editor and persistence layers write them while the tick loop reads
// them. Every access copies the value under a per-port read/write lock via
// SafeRead and SafeWrite.
package port
