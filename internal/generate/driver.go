package generate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/tracewire/usdtgen/internal/abi"
	"github.com/tracewire/usdtgen/internal/cgen"
	"github.com/tracewire/usdtgen/internal/config"
	"github.com/tracewire/usdtgen/internal/genrules"
	"github.com/tracewire/usdtgen/internal/gobind"
	"github.com/tracewire/usdtgen/internal/ident"
	"github.com/tracewire/usdtgen/internal/probe"
	"github.com/tracewire/usdtgen/internal/report"
)

// ErrFailed is returned when the run collected problem reports. The report
// engine holds the details; retrying without a source change cannot succeed.
var ErrFailed = errors.New("generation failed")

// EmissionIOError reports an output sink that could not be written. It
// aborts the run immediately: no partial output is acceptable and a build
// step has nothing to gain from retrying.
type EmissionIOError struct {
	Provider string
	Path     string
	Err      error
}

func (e *EmissionIOError) Error() string {
	return fmt.Sprintf("provider %s: write %s: %v", e.Provider, e.Path, e.Err)
}

func (e *EmissionIOError) Unwrap() error { return e.Err }

// Driver runs the model -> encode -> identify -> emit pipeline over a
// provider batch.
type Driver struct {
	cfg    config.Config
	meta   cgen.Meta
	logger zerolog.Logger
	eng    *report.Engine
}

// New creates a driver. Generator identity arrives here explicitly and is
// threaded through to the emitters; nothing reads it from globals.
func New(cfg config.Config, meta cgen.Meta, logger zerolog.Logger, eng *report.Engine) *Driver {
	return &Driver{
		cfg:    cfg,
		meta:   meta,
		logger: logger.With().Str("component", "driver").Logger(),
		eng:    eng,
	}
}

// Run generates wrappers for every clean provider of the batch. It returns
// an *EmissionIOError on a sink failure and ErrFailed when any probe was
// reported; in the latter case every clean provider has still been written.
func (d *Driver) Run(batch []probe.Provider) error {
	d.checkBatchIdentity(batch)

	prepared := make([]prepared, 0, len(batch))
	for _, p := range batch {
		prepared = append(prepared, d.prepare(p))
	}

	for _, pp := range prepared {
		if d.eng.ProviderFailed(pp.provider.Name) {
			d.logger.Warn().Str("provider", pp.provider.Name).Msg("skipping failed provider")
			continue
		}

		if err := d.write(pp); err != nil {
			var ioErr *EmissionIOError
			if errors.As(err, &ioErr) {
				d.eng.Phase(report.PhaseEmit).Report(
					genrules.EmissionIO(), pp.provider.Name, "", err.Error(),
				)
			}
			return err
		}
	}

	if !d.eng.Empty() {
		return ErrFailed
	}

	return nil
}

// checkBatchIdentity enforces provider uniqueness within one emission batch.
func (d *Driver) checkBatchIdentity(batch []probe.Provider) {
	seen := make(map[string]bool, len(batch))
	for _, p := range batch {
		if seen[p.Name] {
			d.eng.Phase(report.PhaseScan).Report(
				genrules.InvalidProviderName(), p.Name, "",
				"provider defined more than once in this batch",
			)
			continue
		}
		seen[p.Name] = true
	}
}

type prepared struct {
	provider probe.Provider
	ids      []ident.Identifier
}

// prepare encodes and identifies one provider's probes, reporting every
// problem it finds instead of stopping at the first.
func (d *Driver) prepare(p probe.Provider) prepared {
	encodePhase := d.eng.Phase(report.PhaseEncode)
	identifyPhase := d.eng.Phase(report.PhaseIdentify)

	alloc := ident.NewAllocator(d.cfg.Profile())
	exported := make(map[string]string, len(p.Probes))

	out := prepared{provider: p}
	out.provider.Probes = make([]probe.Probe, len(p.Probes))
	copy(out.provider.Probes, p.Probes)
	out.ids = make([]ident.Identifier, len(p.Probes))

	for i := range out.provider.Probes {
		pr := &out.provider.Probes[i]

		encoded, err := abi.Encode(pr.Args)
		if err != nil {
			encodePhase.Report(d.encodeRule(err), p.Name, pr.Name, err.Error())
		} else {
			pr.Args = encoded
		}

		id, err := alloc.Allocate(p.Name, pr.Name)
		if err != nil {
			identifyPhase.Report(genrules.DuplicateProbeIdentifier(), p.Name, pr.Name, err.Error())
			continue
		}
		out.ids[i] = id

		// A case-sensitive profile admits identities the camel-cased Go
		// binding cannot keep apart. Catch that here, where the provider
		// fails as a whole, not during rendering.
		if d.cfg.GoBindings {
			name := gobind.ExportName(id)
			if prev, taken := exported[name]; taken {
				identifyPhase.Report(
					genrules.DuplicateProbeIdentifier(), p.Name, pr.Name,
					fmt.Sprintf("Go binding name %s is already taken by probe %s", name, prev),
				)
				continue
			}
			exported[name] = pr.Name
		}
	}

	return out
}

func (d *Driver) encodeRule(err error) genrules.Rule {
	var tooMany *abi.TooManyArgumentsError
	if errors.As(err, &tooMany) {
		return genrules.TooManyArguments()
	}
	return genrules.UnsupportedArgumentType()
}

// write renders every output of one provider and only then touches the
// filesystem, temp file plus rename per file, so no failure mode leaves a
// partial wrapper behind.
func (d *Driver) write(pp prepared) error {
	p := pp.provider

	type outputFile struct {
		name    string
		content string
	}

	var files []outputFile

	source, err := cgen.EmitSource(p, pp.ids, d.meta)
	if err != nil {
		return fmt.Errorf("render %s: %w", cgen.SourceFileName(p.Name), err)
	}
	files = append(files, outputFile{cgen.SourceFileName(p.Name), source})

	header, err := cgen.EmitHeader(p, pp.ids, d.meta)
	if err != nil {
		return fmt.Errorf("render %s: %w", cgen.HeaderFileName(p.Name), err)
	}
	files = append(files, outputFile{cgen.HeaderFileName(p.Name), header})

	if d.cfg.GoBindings {
		binding, err := gobind.Emit(p, pp.ids, d.meta, d.cfg.Package)
		if err != nil {
			return fmt.Errorf("render %s: %w", gobind.FileName(p.Name), err)
		}
		files = append(files, outputFile{gobind.FileName(p.Name), binding})
	}

	if err := os.MkdirAll(d.cfg.Out, 0o755); err != nil {
		return &EmissionIOError{Provider: p.Name, Path: d.cfg.Out, Err: err}
	}

	var written []string
	for _, f := range files {
		dest := filepath.Join(d.cfg.Out, f.name)
		if err := writeAtomic(dest, []byte(f.content)); err != nil {
			// Roll the provider back to nothing.
			for _, path := range written {
				_ = os.Remove(path)
			}
			return &EmissionIOError{Provider: p.Name, Path: dest, Err: err}
		}
		written = append(written, dest)
	}

	d.logger.Info().
		Str("provider", p.Name).
		Int("probes", len(p.Probes)).
		Strs("files", written).
		Msg("wrapper written")

	return nil
}

// writeAtomic lands content under dest via a same-directory temp file and a
// rename, the only portably atomic way to replace a file.
func writeAtomic(dest string, content []byte) error {
	dir := filepath.Dir(dest)

	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".tmp-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	return nil
}
