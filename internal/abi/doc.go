// Package abi captures the fixed call contract of the target instrumentation
// system and implements the signature encoder over it.
//
// The contract modeled here is the one exposed by <sys/sdt.h>: a family of
// fixed-arity STAP_PROBEn macros up to twelve arguments, each argument slot
// carrying either a fixed-width integer, a machine address, or the address of
// a NUL-terminated string. The encoder maps semantic source types onto those
// slots with a fixed total table; anything outside the table is a hard
// failure, never a silent drop.
package abi
