package report

import (
	"fmt"
	"go/token"
	"io"
	"sync"

	"github.com/tracewire/usdtgen/internal/genrules"
)

// Engine collects and classifies failures discovered during generation.
type Engine struct {
	mu      sync.Mutex
	reports []Report
}

// Report represents a single diagnostic entry.
type Report struct {
	Phase    Phase
	RuleCode genrules.Rule
	Provider string
	Probe    string
	Pos      token.Position
	Message  string
}

// Phase marks the pipeline stage where a report was generated.
type Phase int

const (
	phaseInvalid Phase = iota

	PhaseScan     // source scanning and probe model construction
	PhaseEncode   // argument encoding
	PhaseIdentify // identifier allocation
	PhaseEmit     // wrapper rendering and output writing
)

func (p Phase) String() string {
	switch p {
	case PhaseScan:
		return "scan"
	case PhaseEncode:
		return "encode"
	case PhaseIdentify:
		return "identify"
	case PhaseEmit:
		return "emit"
	default:
		return fmt.Sprintf("unknown-phase(%d)", p)
	}
}

// EnginePhase binds an Engine to a fixed phase.
// It is used during an entire pipeline stage to record rule violations
// without specifying the phase repeatedly.
type EnginePhase struct {
	parent *Engine
	phase  Phase
}

// Phase returns a phase-bound reporter that automatically sets the given
// phase for all reports produced through it.
func (e *Engine) Phase(p Phase) *EnginePhase {
	return &EnginePhase{parent: e, phase: p}
}

// Report adds a new record to the engine.
func (e *Engine) Report(rep Report) {
	e.mu.Lock()
	e.reports = append(e.reports, rep)
	e.mu.Unlock()
}

// Report records a new rule violation under the bound phase.
func (ep *EnginePhase) Report(rule genrules.Rule, provider, probe, message string) {
	ep.parent.Report(Report{
		Phase:    ep.phase,
		RuleCode: rule,
		Provider: provider,
		Probe:    probe,
		Message:  message,
	})
}

// ReportAt is Report with a source position attached.
func (ep *EnginePhase) ReportAt(rule genrules.Rule, provider, probe, message string, pos token.Position) {
	ep.parent.Report(Report{
		Phase:    ep.phase,
		RuleCode: rule,
		Provider: provider,
		Probe:    probe,
		Message:  message,
		Pos:      pos,
	})
}

// Reports returns a snapshot of all collected records.
func (e *Engine) Reports() []Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Report, len(e.reports))
	copy(out, e.reports)
	return out
}

// Empty reports whether the run produced no diagnostics.
func (e *Engine) Empty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.reports) == 0
}

// ProviderFailed reports whether any record belongs to the named provider.
// A failed provider must not produce output files.
func (e *Engine) ProviderFailed(provider string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, rep := range e.reports {
		if rep.Provider == provider {
			return true
		}
	}
	return false
}

// WriteSummary writes all collected reports in a compact, human-readable
// form.
func (e *Engine) WriteSummary(w io.Writer) {
	for _, rep := range e.Reports() {
		where := rep.Provider
		if rep.Probe != "" {
			where += ":" + rep.Probe
		}
		if rep.Pos.IsValid() {
			fmt.Fprintf(w, "[%s] %s — %s: %s (%s:%d)\n",
				rep.Phase, rep.RuleCode, where, rep.Message, rep.Pos.Filename, rep.Pos.Line)
			continue
		}
		fmt.Fprintf(w, "[%s] %s — %s: %s\n", rep.Phase, rep.RuleCode, where, rep.Message)
	}
}
