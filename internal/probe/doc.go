// Package probe defines the structural types describing statically defined
// instrumentation points extracted from annotated Go source.
//
// The entities here provide a consistent vocabulary for the rest of the
// generator: a Provider groups Probes, a Probe carries an ordered list of
// typed Arguments. Values are plain data constructed once per generation run
// and never mutated afterwards; every behavioral decision (encoding,
// identity, rendering) belongs to the packages downstream.
package probe
