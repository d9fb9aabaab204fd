// Package etm provides the core tick-driven simulation engine for a
// lattice-based timing-mechanics model.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - lattice.go: the fixed 3-D coordinate space and the connectivity contract
//   - identity.go: phase-carrying entities and their return-status lifecycle
//   - engine.go: the per-tick pipeline (phases, fields, returns, detection, decay)
//
// # Architecture
//
// The engine owns three fixed-size maps (position -> EchoField, position ->
// Recruiter, position -> coexisting identity IDs) plus an ordered identity
// list. Each AdvanceTick call is a total function over that state: neighbor
// reads use a pre-tick snapshot so simultaneous field updates are
// order-independent, and all writes commit before the call returns.
//
// Supporting pieces:
//   - particles.go: the closed particle-kind library (timing-pattern templates)
//   - composite.go: composite binding, beta decay, conservation diagnostics
//   - detection.go: Model B detection-triggered conflict resolution and
//     electron-positron annihilation
//   - energy.go: the calibrated/legacy 4-term energy model
//   - rng.go: seedable per-subsystem RNG so runs reproduce bit-for-bit
//
// Result compaction and JSON export live in etm/results; scenario
// construction and the CLI live in cmd. Neither reaches back into engine
// internals beyond the snapshot types.
package etm
