// Package report collects and classifies failures discovered during a
// generation run.
//
// Per-probe problems (encoding, identity) must not stop the run at the first
// hit: a user fixing probe definitions should see every violation in one
// pass. The engine therefore accumulates reports across the whole batch and
// the driver decides afterwards which providers produced output and what the
// exit status is.
//
// Core components:
//
//   - Engine
//     Thread-safe accumulator of diagnostic records.
//
//   - Phase-bound reporters
//     Bind an Engine to a fixed pipeline phase so call sites do not repeat
//     it on every record.
package report
