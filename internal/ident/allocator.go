package ident

import (
	"fmt"
	"strings"

	"github.com/tracewire/usdtgen/internal/abi"
)

// Identifier is the full naming record of one probe. Symbol, Semaphore and
// EnabledFn are the C-level spellings used by the emitters; Provider and
// Probe form the identity tracing tools see.
type Identifier struct {
	Provider string
	Probe    string

	// Symbol is the wrapper entry point name, <provider>_<probe>.
	Symbol string

	// Semaphore is the .probes-section counter gating the probe.
	Semaphore string

	// EnabledFn is the cheap is-anybody-listening predicate exposed to
	// binding code. Case-preserving on purpose: uppercased macro spellings
	// would collide for probes distinguished only by case.
	EnabledFn string
}

// DuplicateIdentifierError reports two probes of one provider resolving to
// the same identity under the ABI's case rule.
type DuplicateIdentifierError struct {
	Provider string
	Probe    string
	Existing string
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf(
		"probe %s:%s collides with already defined probe %s:%s",
		e.Provider, e.Probe, e.Provider, e.Existing,
	)
}

// Derive computes the identifier of one probe. Pure function of the two
// names: regenerating after adding or removing unrelated probes never moves
// an untouched probe's identity.
func Derive(provider, name string) Identifier {
	symbol := provider + "_" + name
	return Identifier{
		Provider:  provider,
		Probe:     name,
		Symbol:    symbol,
		Semaphore: symbol + "_semaphore",
		EnabledFn: symbol + "_enabled",
	}
}

// Allocator tracks identity collisions within a single provider. One
// instance per provider per run; it carries no state across providers.
type Allocator struct {
	profile abi.Profile
	seen    map[string]string
}

// NewAllocator creates an allocator bound to the given ABI profile.
func NewAllocator(profile abi.Profile) *Allocator {
	return &Allocator{
		profile: profile,
		seen:    make(map[string]string),
	}
}

// Allocate derives the probe's identifier and fails if it collides with a
// previously allocated one after case normalization.
func (a *Allocator) Allocate(provider, name string) (Identifier, error) {
	key := name
	if !a.profile.CaseSensitive {
		key = strings.ToLower(name)
	}

	if existing, ok := a.seen[key]; ok {
		return Identifier{}, &DuplicateIdentifierError{
			Provider: provider,
			Probe:    name,
			Existing: existing,
		}
	}
	a.seen[key] = name

	return Derive(provider, name), nil
}
