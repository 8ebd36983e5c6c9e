package abi

// MaxArguments is the arity ceiling of the STAP_PROBEn macro family in
// <sys/sdt.h>. It is a constant of the instrumentation system, not a knob.
const MaxArguments = 12

// Profile describes the identity rules of one target instrumentation ABI.
// Probe argument encodings are shared across profiles; what varies between
// targets is how probe identifiers compare.
type Profile struct {
	Name string

	// CaseSensitive tells whether provider/probe identity is compared
	// byte-exact. SystemTap USDT identity is case-sensitive; some consumers
	// fold case and need collisions caught before their compiler trips over
	// them.
	CaseSensitive bool
}

// SystemTap is the default target: USDT notes read by systemtap, bpftrace
// and perf, with case-sensitive probe identity.
func SystemTap() Profile {
	return Profile{
		Name:          "stap_usdt",
		CaseSensitive: true,
	}
}

// CaseFolding is SystemTap with case-insensitive identity comparison, for
// toolchains that fold probe names.
func CaseFolding() Profile {
	return Profile{
		Name:          "stap_usdt_nocase",
		CaseSensitive: false,
	}
}
