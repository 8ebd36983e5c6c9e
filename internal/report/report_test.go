package report

import (
	"strings"
	"sync"
	"testing"

	"github.com/tracewire/usdtgen/internal/genrules"
)

func TestEngine_ReportPhases(t *testing.T) {
	tests := []struct {
		name     string
		phase    Phase
		rule     genrules.Rule
		provider string
		probe    string
		message  string
	}{
		{
			name:     "scan-phase bad probe name",
			phase:    PhaseScan,
			rule:     genrules.InvalidProbeName(),
			provider: "db",
			probe:    "2fast",
			message:  `"2fast" is not a valid probe identifier`,
		},
		{
			name:     "encode-phase unsupported type",
			phase:    PhaseEncode,
			rule:     genrules.UnsupportedArgumentType(),
			provider: "db",
			probe:    "query",
			message:  "argument 1: source type chan int has no probe slot encoding",
		},
		{
			name:     "identify-phase collision",
			phase:    PhaseIdentify,
			rule:     genrules.DuplicateProbeIdentifier(),
			provider: "db",
			probe:    "Fire",
			message:  "collides with already defined probe db:fire",
		},
		{
			name:     "emit-phase io",
			phase:    PhaseEmit,
			rule:     genrules.EmissionIO(),
			provider: "db",
			message:  "write db_usdt.c: permission denied",
		},
	}

	var e Engine

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.Phase(tt.phase).Report(tt.rule, tt.provider, tt.probe, tt.message)
		})
	}

	reps := e.Reports()
	if len(reps) != len(tests) {
		t.Fatalf("expected %d reports, got %d", len(tests), len(reps))
	}

	for i, rep := range reps {
		want := tests[i]
		if rep.Phase != want.phase {
			t.Errorf("[%s] phase mismatch: got %v, want %v", want.name, rep.Phase, want.phase)
		}
		if rep.RuleCode != want.rule {
			t.Errorf("[%s] rule mismatch: got %v, want %v", want.name, rep.RuleCode, want.rule)
		}
		if rep.Provider != want.provider || rep.Probe != want.probe {
			t.Errorf("[%s] subject mismatch: got %s:%s, want %s:%s",
				want.name, rep.Provider, rep.Probe, want.provider, want.probe)
		}
		if rep.Message != want.message {
			t.Errorf("[%s] message mismatch: got %q, want %q", want.name, rep.Message, want.message)
		}
	}

	if e.Empty() {
		t.Error("engine with reports claims to be empty")
	}
	if !e.ProviderFailed("db") {
		t.Error("provider with reports not marked failed")
	}
	if e.ProviderFailed("net") {
		t.Error("untouched provider marked failed")
	}
}

func TestEngine_WriteSummary(t *testing.T) {
	var e Engine
	e.Phase(PhaseEncode).Report(genrules.TooManyArguments(), "db", "bulk", "13 arguments exceed the 12-argument probe limit")

	var sb strings.Builder
	e.WriteSummary(&sb)

	out := sb.String()
	for _, fragment := range []string{"[encode]", "PRB010", "db:bulk", "13 arguments"} {
		if !strings.Contains(out, fragment) {
			t.Errorf("summary misses %q:\n%s", fragment, out)
		}
	}
}

func TestEngine_ConcurrencySafety(t *testing.T) {
	const n = 500
	var (
		e  Engine
		wg sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Phase(PhaseEncode).Report(genrules.UnsupportedArgumentType(), "db", "query", "parallel add")
		}()
	}
	wg.Wait()

	reps := e.Reports()
	if len(reps) != n {
		t.Fatalf("expected %d reports, got %d", n, len(reps))
	}
	reps[0].Message = "changed"
	reps2 := e.Reports()
	if reps2[0].Message == "changed" {
		t.Fatal("Reports() returned shared slice, expected copy")
	}
}
