// Package ident derives the externally visible identity of each probe.
//
// The provider/probe name pair is what tracing tools attach to by string, so
// it must stay referentially stable across regenerations: everything derived
// here is a pure function of the two names and never of batch position or
// insertion order. The allocator additionally detects identity collisions
// under the target ABI's case rule before the C compiler can fail on them
// obscurely.
package ident
