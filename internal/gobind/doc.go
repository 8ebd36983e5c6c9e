// Package gobind renders the cgo binding file giving Go code a typed entry
// point for every probe of a provider.
//
// Each binding asks the C wrapper whether anybody is listening before doing
// any argument conversion, so an inactive probe costs one function call and
// a semaphore load. The rendered source is round-tripped through the dave/dst
// decorated AST before anything is returned: a binding that does not parse is
// an emitter bug and must fail the run, never reach the output directory.
package gobind
