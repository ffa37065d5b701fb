// Package hostlib is the caller-facing surface of the Spindle host SDK: a
// small core for discovering capability providers and dispatching work to the
// first one that accepts an input.
//
// Providers implement capability.Provider and are advertised by sources (an
// in-process table, a manifest file, WASM artifacts pulled from an OCI
// registry). The registry enumerates them lazily with per-entry fault
// isolation; the Dispatcher walks that sequence in order and commits to the
// first provider whose Accepts returns true.
package hostlib
