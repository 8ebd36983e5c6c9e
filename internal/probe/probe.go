package probe

import (
	"fmt"
)

// Argument is one typed probe argument. Display keeps the original source
// spelling of the type for diagnostics; Encoded is filled in by the signature
// encoder and stays zero until then.
type Argument struct {
	Position int
	Source   Type
	Display  string
	Encoded  Encoding
}

// Probe is a single instrumentation point: a stable name plus an ordered,
// fixed argument list. Source holds the verbatim text of the originating
// method declaration and is purely informational.
type Probe struct {
	Name   string
	Args   []Argument
	Source string
}

// Provider is a named group of probes corresponding to one annotated
// interface. Probe order is the declaration order and is preserved all the
// way into the emitted wrapper.
type Provider struct {
	Name   string
	Probes []Probe
	Source string
}

// InvalidProbeDefinitionError reports a probe or provider definition the
// generator cannot accept, naming the offending field.
type InvalidProbeDefinitionError struct {
	Provider string
	Probe    string
	Field    string
	Reason   string
}

func (e *InvalidProbeDefinitionError) Error() string {
	where := e.Provider
	if e.Probe != "" {
		where += ":" + e.Probe
	}
	return fmt.Sprintf("invalid probe definition %s: field %s: %s", where, e.Field, e.Reason)
}

// NewProbe validates and constructs a probe. The name must be a C-safe
// identifier and argument positions must be contiguous from zero — both are
// demands of the USDT note format, not style preferences.
func NewProbe(provider, name string, args []Argument, source string) (Probe, error) {
	if !IsIdent(name) {
		return Probe{}, &InvalidProbeDefinitionError{
			Provider: provider,
			Probe:    name,
			Field:    "name",
			Reason:   fmt.Sprintf("%q is not a valid probe identifier", name),
		}
	}

	for i, arg := range args {
		if arg.Position != i {
			return Probe{}, &InvalidProbeDefinitionError{
				Provider: provider,
				Probe:    name,
				Field:    fmt.Sprintf("args[%d]", i),
				Reason:   fmt.Sprintf("position %d breaks contiguous ordering", arg.Position),
			}
		}
	}

	out := Probe{Name: name, Source: source}
	out.Args = make([]Argument, len(args))
	copy(out.Args, args)

	return out, nil
}

// NewProvider validates and constructs a provider over already-constructed
// probes. Probe name uniqueness inside the provider is byte-exact here; the
// identifier allocator applies the ABI's case rule on top of this later.
func NewProvider(name string, probes []Probe, source string) (Provider, error) {
	if !IsIdent(name) {
		return Provider{}, &InvalidProbeDefinitionError{
			Provider: name,
			Field:    "provider",
			Reason:   fmt.Sprintf("%q is not a valid provider identifier", name),
		}
	}

	seen := make(map[string]struct{}, len(probes))
	for _, p := range probes {
		if _, ok := seen[p.Name]; ok {
			return Provider{}, &InvalidProbeDefinitionError{
				Provider: name,
				Probe:    p.Name,
				Field:    "name",
				Reason:   "duplicate probe name within provider",
			}
		}
		seen[p.Name] = struct{}{}
	}

	out := Provider{Name: name, Source: source}
	out.Probes = make([]Probe, len(probes))
	copy(out.Probes, probes)

	return out, nil
}

// IsIdent reports whether s matches [A-Za-z_][A-Za-z0-9_]*, the identifier
// charset shared by C symbols and USDT probe names.
func IsIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
