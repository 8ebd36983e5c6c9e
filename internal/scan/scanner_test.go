package scan

import (
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sirkon/deepequal"

	"github.com/tracewire/usdtgen/internal/genrules"
	"github.com/tracewire/usdtgen/internal/probe"
	"github.com/tracewire/usdtgen/internal/report"
)

func parseFile(t *testing.T, src string) (*token.FileSet, *ast.File) {
	t.Helper()

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "probes.go", src, parser.ParseComments)
	if err != nil {
		t.Fatal(err)
	}
	return fset, file
}

func TestFileScenario(t *testing.T) {
	src := `package sample

//usdt:provider
type DB interface {
	Query(path string)
	Commit()
}
`

	var eng report.Engine
	s := New(zerolog.Nop(), &eng, nil)

	fset, file := parseFile(t, src)
	got := s.File(fset, file)

	if !eng.Empty() {
		t.Fatalf("unexpected reports: %v", eng.Reports())
	}

	want := []probe.Provider{
		{
			Name: "db",
			Probes: []probe.Probe{
				{
					Name: "query",
					Args: []probe.Argument{
						{Position: 0, Source: probe.TypeString, Display: "string"},
					},
					Source: "Query(path string)",
				},
				{
					Name:   "commit",
					Source: "Commit()",
				},
			},
			Source: "//usdt:provider\ntype DB interface {\n\tQuery(path string)\n\tCommit()\n}",
		},
	}

	if !reflect.DeepEqual(want, got) {
		deepequal.SideBySide(t, "providers", want, got)
	}
}

func TestFileNameOverride(t *testing.T) {
	src := `package sample

//usdt:provider name=db_core
type DB interface {
	Commit()
}
`

	var eng report.Engine
	fset, file := parseFile(t, src)
	got := New(zerolog.Nop(), &eng, nil).File(fset, file)

	if len(got) != 1 || got[0].Name != "db_core" {
		t.Fatalf("expected provider db_core, got %+v", got)
	}
}

func TestFileNamedTypeTable(t *testing.T) {
	src := `package sample

//usdt:provider
type IO interface {
	Waited(d time.Duration, mode os.FileMode)
}
`

	var eng report.Engine
	s := New(zerolog.Nop(), &eng, map[string]probe.Type{
		"os.FileMode": probe.TypeUint32,
	})

	fset, file := parseFile(t, src)
	got := s.File(fset, file)

	if len(got) != 1 {
		t.Fatalf("expected one provider, got %d", len(got))
	}
	args := got[0].Probes[0].Args
	if args[0].Source != probe.TypeInt64 {
		t.Errorf("time.Duration resolved to %v, want int64 via the built-in table", args[0].Source)
	}
	if args[1].Source != probe.TypeUint32 {
		t.Errorf("os.FileMode resolved to %v, want uint32 via the custom table", args[1].Source)
	}
}

func TestFileUnresolvedTypePassesThrough(t *testing.T) {
	src := `package sample

//usdt:provider
type DB interface {
	Query(q Query)
}
`

	var eng report.Engine
	fset, file := parseFile(t, src)
	got := New(zerolog.Nop(), &eng, nil).File(fset, file)

	// Unresolved types are not a scan failure: the encoder owns the
	// unsupported-type diagnostic and needs the original spelling.
	if !eng.Empty() {
		t.Fatalf("unexpected reports: %v", eng.Reports())
	}
	arg := got[0].Probes[0].Args[0]
	if arg.Source != probe.TypeInvalid || arg.Display != "Query" {
		t.Fatalf("unexpected argument %+v", arg)
	}
}

func TestFileRejections(t *testing.T) {
	tests := []struct {
		name string
		src  string
		rule genrules.Rule
	}{
		{
			name: "marker on struct",
			src: `package sample

//usdt:provider
type DB struct{}
`,
			rule: genrules.AnnotatedNonInterface(),
		},
		{
			name: "method with results",
			src: `package sample

//usdt:provider
type DB interface {
	Query(path string) error
}
`,
			rule: genrules.ProbeMethodReturns(),
		},
		{
			name: "variadic method",
			src: `package sample

//usdt:provider
type DB interface {
	Query(parts ...string)
}
`,
			rule: genrules.VariadicProbeMethod(),
		},
		{
			name: "bad name override",
			src: `package sample

//usdt:provider name=my.db
type DB interface {
	Commit()
}
`,
			rule: genrules.InvalidProviderName(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var eng report.Engine
			fset, file := parseFile(t, tt.src)
			New(zerolog.Nop(), &eng, nil).File(fset, file)

			reps := eng.Reports()
			if len(reps) == 0 {
				t.Fatal("expected a report")
			}
			if reps[0].RuleCode != tt.rule {
				t.Fatalf("got rule %v, want %v", reps[0].RuleCode, tt.rule)
			}
			if reps[0].Phase != report.PhaseScan {
				t.Fatalf("got phase %v, want scan", reps[0].Phase)
			}
		})
	}
}

func TestFileMultiNameParams(t *testing.T) {
	src := `package sample

//usdt:provider
type Net interface {
	Sent(src, dst string, n int)
}
`

	var eng report.Engine
	fset, file := parseFile(t, src)
	got := New(zerolog.Nop(), &eng, nil).File(fset, file)

	args := got[0].Probes[0].Args
	if len(args) != 3 {
		t.Fatalf("expected 3 arguments, got %d", len(args))
	}
	wantTypes := []probe.Type{probe.TypeString, probe.TypeString, probe.TypeInt}
	for i, arg := range args {
		if arg.Position != i || arg.Source != wantTypes[i] {
			t.Fatalf("argument %d is %+v, want position %d type %v", i, arg, i, wantTypes[i])
		}
	}
}

func TestFileIgnoresUnannotated(t *testing.T) {
	src := `package sample

type Plain interface {
	Whatever()
}

//usdt:providers
type AlmostMarked interface {
	Whatever()
}
`

	var eng report.Engine
	fset, file := parseFile(t, src)
	got := New(zerolog.Nop(), &eng, nil).File(fset, file)

	if len(got) != 0 {
		t.Fatalf("expected no providers, got %+v", got)
	}
}

func TestSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"DB", "db"},
		{"ConnPool", "conn_pool"},
		{"HTTPServer", "http_server"},
		{"Query", "query"},
		{"AcquireSlow", "acquire_slow"},
		{"already_snake", "already_snake"},
		{"ParseV2", "parse_v2"},
	}

	for _, tt := range tests {
		if got := snake(tt.in); got != tt.want {
			t.Errorf("snake(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
