// Package genrules defines the canonical rule codes (PRB-series) enforced by usdtgen.
// Each rule represents a distinct verification invariant of the generation pipeline.
//
// Rule numbering scheme:
//
//	000–009  Probe and provider definition validity
//	010–019  Argument arity
//	020–029  Argument encoding
//	030–039  Probe identity and naming
//	040–049  Emission and output I/O
//	050–059  Source scanning and annotation placement
package genrules

import "fmt"

// Rule represents a usdtgen rule code (PRB-series).
type Rule int

const (
	ruleInvalid Rule = iota

	PRB000InvalidProbeName
	PRB001InvalidProviderName
	PRB010TooManyArguments
	PRB020UnsupportedArgumentType
	PRB030DuplicateProbeIdentifier
	PRB040EmissionIO
	PRB050AnnotatedNonInterface
	PRB051ProbeMethodReturns
	PRB052VariadicProbeMethod
)

// String returns the canonical code and short name of the rule.
// Example: "PRB000: InvalidProbeName"
func (r Rule) String() string {
	switch r {
	case PRB000InvalidProbeName:
		return "PRB000: InvalidProbeName"
	case PRB001InvalidProviderName:
		return "PRB001: InvalidProviderName"
	case PRB010TooManyArguments:
		return "PRB010: TooManyArguments"
	case PRB020UnsupportedArgumentType:
		return "PRB020: UnsupportedArgumentType"
	case PRB030DuplicateProbeIdentifier:
		return "PRB030: DuplicateProbeIdentifier"
	case PRB040EmissionIO:
		return "PRB040: EmissionIO"
	case PRB050AnnotatedNonInterface:
		return "PRB050: AnnotatedNonInterface"
	case PRB051ProbeMethodReturns:
		return "PRB051: ProbeMethodReturns"
	case PRB052VariadicProbeMethod:
		return "PRB052: VariadicProbeMethod"
	default:
		return fmt.Sprintf("rule-unknown(%d)", r)
	}
}

// Description returns the human-readable explanation of the rule.
func (r Rule) Description() string {
	switch r {
	case PRB000InvalidProbeName:
		return "Probe names must match [A-Za-z_][A-Za-z0-9_]* as required by the USDT note format."
	case PRB001InvalidProviderName:
		return "Provider names must match [A-Za-z_][A-Za-z0-9_]*; tracing tools cannot attach otherwise."
	case PRB010TooManyArguments:
		return "A probe cannot carry more arguments than the fixed-arity STAP_PROBEn family supports."
	case PRB020UnsupportedArgumentType:
		return "Every probe argument must map to an integer, pointer or string-pointer encoding; opaque values cannot cross the probe boundary."
	case PRB030DuplicateProbeIdentifier:
		return "Two probes of one provider resolved to the same identifier under the target ABI's case rule."
	case PRB040EmissionIO:
		return "The generated wrapper could not be written to the output sink."
	case PRB050AnnotatedNonInterface:
		return "The usdt:provider marker is only meaningful on interface type declarations."
	case PRB051ProbeMethodReturns:
		return "Probe methods are fire-and-forget and must not declare return values."
	case PRB052VariadicProbeMethod:
		return "Probe argument lists are fixed at generation time; variadic methods cannot be probes."
	default:
		return fmt.Sprintf("unknown-rule(%d)", r)
	}
}

// Canonical constructors — for readability and stable call sites.

func InvalidProbeName() Rule         { return PRB000InvalidProbeName }
func InvalidProviderName() Rule      { return PRB001InvalidProviderName }
func TooManyArguments() Rule         { return PRB010TooManyArguments }
func UnsupportedArgumentType() Rule  { return PRB020UnsupportedArgumentType }
func DuplicateProbeIdentifier() Rule { return PRB030DuplicateProbeIdentifier }
func EmissionIO() Rule               { return PRB040EmissionIO }
func AnnotatedNonInterface() Rule    { return PRB050AnnotatedNonInterface }
func ProbeMethodReturns() Rule       { return PRB051ProbeMethodReturns }
func VariadicProbeMethod() Rule      { return PRB052VariadicProbeMethod }
