// Package cgen renders the native wrapper source for one provider.
//
// The output is built by direct string construction, no templating engine:
// an attribution header, the <sys/sdt.h> include with semaphore support
// enabled, and one entry point per probe. Every entry point first tests the
// probe's semaphore and returns immediately when no tracer is attached, so
// argument marshalling is never paid for an inactive probe; only then does it
// pass the encoded arguments to the fixed-arity STAP_PROBEn macro.
//
// Entry points appear in probe declaration order. Rendering is pure: the
// emitter either returns the complete wrapper text or an error, never a
// partial fragment.
package cgen
