package scan

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/printer"
	"go/token"
	"go/types"
	"maps"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"golang.org/x/tools/go/packages"

	"github.com/tracewire/usdtgen/internal/genrules"
	"github.com/tracewire/usdtgen/internal/probe"
	"github.com/tracewire/usdtgen/internal/report"
)

// Directive is the marker comment that makes an interface a provider.
const Directive = "usdt:provider"

// Scanner extracts providers from annotated interfaces.
type Scanner struct {
	logger zerolog.Logger
	rep    *report.EnginePhase
	named  map[string]probe.Type
}

// New creates a scanner. The custom table extends the resolution of named
// source types; built-in entries win on conflict.
func New(logger zerolog.Logger, eng *report.Engine, custom map[string]probe.Type) *Scanner {
	predefined := map[string]probe.Type{
		"unsafe.Pointer": probe.TypeUnsafePointer,
		"time.Duration":  probe.TypeInt64,
	}

	if custom == nil {
		custom = make(map[string]probe.Type)
	} else {
		custom = maps.Clone(custom)
	}

	for name, typ := range predefined {
		custom[name] = typ
	}

	return &Scanner{
		logger: logger.With().Str("component", "scanner").Logger(),
		rep:    eng.Phase(report.PhaseScan),
		named:  custom,
	}
}

// Packages loads the given package patterns and scans their syntax for
// providers. The result order follows package and file order as loaded, so
// repeated runs over unchanged source produce an identical batch.
func (s *Scanner) Packages(patterns ...string) ([]probe.Provider, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}

	var out []probe.Provider
	for _, pkg := range pkgs {
		s.logger.Debug().Str("package", pkg.PkgPath).Msg("scanning package")
		for _, file := range pkg.Syntax {
			out = append(out, s.File(pkg.Fset, file)...)
		}
	}

	return out, nil
}

// File scans a single parsed file for annotated interfaces.
func (s *Scanner) File(fset *token.FileSet, file *ast.File) []probe.Provider {
	var out []probe.Provider

	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}

		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}

			doc := ts.Doc
			if doc == nil && len(gd.Specs) == 1 {
				doc = gd.Doc
			}

			directive, nameOverride, ok := findDirective(doc)
			if !ok {
				continue
			}

			iface, ok := ts.Type.(*ast.InterfaceType)
			if !ok {
				s.rep.ReportAt(
					genrules.AnnotatedNonInterface(),
					ts.Name.Name, "",
					fmt.Sprintf("//%s is only meaningful on interface types", Directive),
					fset.Position(ts.Pos()),
				)
				continue
			}

			name := nameOverride
			if name == "" {
				name = snake(ts.Name.Name)
			}

			if p, ok := s.provider(fset, gd, ts, iface, name, directive); ok {
				s.logger.Debug().
					Str("provider", p.Name).
					Int("probes", len(p.Probes)).
					Msg("found provider")
				out = append(out, p)
			}
		}
	}

	return out
}

func (s *Scanner) provider(
	fset *token.FileSet,
	gd *ast.GenDecl,
	ts *ast.TypeSpec,
	iface *ast.InterfaceType,
	name string,
	directive string,
) (probe.Provider, bool) {
	var probes []probe.Probe

	for _, method := range iface.Methods.List {
		ft, ok := method.Type.(*ast.FuncType)
		if !ok {
			s.rep.ReportAt(
				genrules.AnnotatedNonInterface(),
				name, "",
				"embedded interfaces are not supported in provider declarations",
				fset.Position(method.Pos()),
			)
			continue
		}
		if len(method.Names) == 0 {
			continue
		}

		methodName := method.Names[0].Name
		probeName := snake(methodName)
		pos := fset.Position(method.Pos())

		if ft.Results != nil && len(ft.Results.List) > 0 {
			s.rep.ReportAt(
				genrules.ProbeMethodReturns(),
				name, probeName,
				fmt.Sprintf("method %s declares return values", methodName),
				pos,
			)
			continue
		}

		args, ok := s.arguments(name, probeName, ft, fset)
		if !ok {
			continue
		}

		pr, err := probe.NewProbe(name, probeName, args, methodSource(methodName, ft))
		if err != nil {
			s.rep.ReportAt(genrules.InvalidProbeName(), name, probeName, err.Error(), pos)
			continue
		}

		probes = append(probes, pr)
	}

	p, err := probe.NewProvider(name, probes, declSource(fset, gd, directive))
	if err != nil {
		s.rep.ReportAt(
			genrules.InvalidProviderName(),
			name, "",
			err.Error(),
			fset.Position(ts.Pos()),
		)
		return probe.Provider{}, false
	}

	return p, true
}

func (s *Scanner) arguments(provider, probeName string, ft *ast.FuncType, fset *token.FileSet) ([]probe.Argument, bool) {
	if ft.Params == nil {
		return nil, true
	}

	var args []probe.Argument
	for _, field := range ft.Params.List {
		if _, variadic := field.Type.(*ast.Ellipsis); variadic {
			s.rep.ReportAt(
				genrules.VariadicProbeMethod(),
				provider, probeName,
				"variadic parameters cannot cross the probe boundary",
				fset.Position(field.Pos()),
			)
			return nil, false
		}

		source, display := s.resolveType(field.Type)

		count := len(field.Names)
		if count == 0 {
			// Unnamed parameter, one argument.
			count = 1
		}
		for i := 0; i < count; i++ {
			args = append(args, probe.Argument{
				Position: len(args),
				Source:   source,
				Display:  display,
			})
		}
	}

	return args, true
}

// resolveType maps a parameter type expression to its semantic tag by
// spelling. Unresolved types stay TypeInvalid and fail later in the encoder,
// which owns the unsupported-type diagnostic.
func (s *Scanner) resolveType(expr ast.Expr) (probe.Type, string) {
	display := types.ExprString(expr)

	if tp, ok := s.named[display]; ok {
		return tp, display
	}

	switch v := expr.(type) {
	case *ast.Ident:
		if tp, ok := basicTypes[v.Name]; ok {
			return tp, display
		}

	case *ast.StarExpr:
		return probe.TypePointer, display
	}

	return probe.TypeInvalid, display
}

var basicTypes = map[string]probe.Type{
	"bool":    probe.TypeBool,
	"int8":    probe.TypeInt8,
	"int16":   probe.TypeInt16,
	"int32":   probe.TypeInt32,
	"int64":   probe.TypeInt64,
	"int":     probe.TypeInt,
	"uint8":   probe.TypeUint8,
	"uint16":  probe.TypeUint16,
	"uint32":  probe.TypeUint32,
	"uint64":  probe.TypeUint64,
	"uint":    probe.TypeUint,
	"uintptr": probe.TypeUintptr,
	"string":  probe.TypeString,
	"byte":    probe.TypeUint8,
	"rune":    probe.TypeInt32,
}

// findDirective looks for the //usdt:provider marker in a doc comment and
// extracts the optional name=... override.
func findDirective(doc *ast.CommentGroup) (directive, name string, found bool) {
	if doc == nil {
		return "", "", false
	}

	for _, comment := range doc.List {
		text := strings.TrimPrefix(comment.Text, "//")
		if !strings.HasPrefix(text, Directive) {
			continue
		}

		rest := strings.TrimPrefix(text, Directive)
		if rest != "" && !strings.HasPrefix(rest, " ") {
			// Something like //usdt:providers, not our marker.
			continue
		}

		for _, field := range strings.Fields(rest) {
			if v, ok := strings.CutPrefix(field, "name="); ok {
				name = v
			}
		}

		return comment.Text, name, true
	}

	return "", "", false
}

// methodSource spells the originating method declaration, e.g.
// "Query(path string)".
func methodSource(name string, ft *ast.FuncType) string {
	return name + strings.TrimPrefix(types.ExprString(ft), "func")
}

// declSource renders the verbatim provider declaration, directive included,
// for the attribution header of generated files.
func declSource(fset *token.FileSet, gd *ast.GenDecl, directive string) string {
	var buf bytes.Buffer
	buf.WriteString(directive)
	buf.WriteString("\n")
	if err := printer.Fprint(&buf, fset, gd); err != nil {
		// Informational text only, the wrapper stays correct without it.
		return directive
	}
	return buf.String()
}

// snake converts a Go exported name to USDT naming convention:
// ConnPool -> conn_pool, HTTPServer -> http_server. Tracing consumers
// reject dots and prefer lower case, so interface and method names are
// normalized this way by default.
func snake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if !unicode.IsUpper(r) {
			b.WriteRune(r)
			continue
		}
		if i > 0 {
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (nextLower && runes[i-1] != '_') {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
