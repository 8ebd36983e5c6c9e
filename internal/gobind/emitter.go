package gobind

import (
	"bytes"
	"fmt"
	"go/printer"
	"strings"

	"github.com/dave/dst/decorator"

	"github.com/tracewire/usdtgen/internal/cgen"
	"github.com/tracewire/usdtgen/internal/ident"
	"github.com/tracewire/usdtgen/internal/probe"
)

// FileName is the output name of the provider's Go binding.
func FileName(provider string) string {
	return provider + "_usdt.go"
}

// DuplicateNameError reports two probes whose exported binding names
// coincide after camel-casing, e.g. fire and Fire both becoming Fire. The C
// symbols stay distinct under a case-sensitive profile, but one Go file
// cannot declare the function twice.
type DuplicateNameError struct {
	Provider string
	Probe    string
	Existing string
	Name     string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf(
		"provider %s: probes %s and %s both map to Go binding name %s",
		e.Provider, e.Existing, e.Probe, e.Name,
	)
}

// Emit renders the Go binding for one provider into the given package. The
// probes must be encoded and ids must parallel them, same contract as the C
// emitters.
func Emit(p probe.Provider, ids []ident.Identifier, meta cgen.Meta, pkg string) (string, error) {
	if len(ids) != len(p.Probes) {
		return "", fmt.Errorf("provider %s: %d identifiers for %d probes", p.Name, len(ids), len(p.Probes))
	}
	if !probe.IsIdent(pkg) {
		return "", fmt.Errorf("provider %s: %q is not a valid package name", p.Name, pkg)
	}

	names := make(map[string]string, len(p.Probes))
	for i, pr := range p.Probes {
		name := ExportName(ids[i])
		if prev, taken := names[name]; taken {
			return "", &DuplicateNameError{
				Provider: p.Name,
				Probe:    pr.Name,
				Existing: prev,
				Name:     name,
			}
		}
		names[name] = pr.Name
	}

	src, err := render(p, ids, meta, pkg)
	if err != nil {
		return "", err
	}

	// Round-trip through the decorated AST. This both proves the rendered
	// binding parses and normalizes it to canonical formatting.
	file, err := decorator.Parse(src)
	if err != nil {
		return "", fmt.Errorf("provider %s: rendered binding does not parse: %w", p.Name, err)
	}

	fset, af, err := decorator.RestoreFile(file)
	if err != nil {
		return "", fmt.Errorf("provider %s: restore binding file: %w", p.Name, err)
	}

	var out bytes.Buffer
	if err := printer.Fprint(&out, fset, af); err != nil {
		return "", fmt.Errorf("provider %s: print binding file: %w", p.Name, err)
	}

	return out.String(), nil
}

func render(p probe.Provider, ids []ident.Identifier, meta cgen.Meta, pkg string) (string, error) {
	needsUnsafe := false
	needsStdlib := false
	for _, pr := range p.Probes {
		for _, arg := range pr.Args {
			switch arg.Encoded.Kind {
			case probe.EncodingStringPointer:
				needsUnsafe = true
				needsStdlib = true
			case probe.EncodingPointer:
				needsUnsafe = true
			}
		}
	}

	var b strings.Builder

	fmt.Fprintf(&b, "// Code generated by %s %s. DO NOT EDIT.\n", meta.Tool, meta.Version)
	b.WriteString("\n")
	fmt.Fprintf(&b, "package %s\n", pkg)
	b.WriteString("\n")
	b.WriteString("/*\n")
	if needsStdlib {
		b.WriteString("#include <stdlib.h>\n")
	}
	fmt.Fprintf(&b, "#include %q\n", cgen.HeaderFileName(p.Name))
	b.WriteString("*/\n")
	b.WriteString("import \"C\"\n")
	if needsUnsafe {
		b.WriteString("\n")
		b.WriteString("import \"unsafe\"\n")
	}

	for i, pr := range p.Probes {
		id := ids[i]

		b.WriteString("\n")
		fmt.Fprintf(&b, "// %s fires the %s:%s probe.\n", ExportName(id), id.Provider, id.Probe)
		fmt.Fprintf(&b, "func %s(%s) {\n", ExportName(id), goParamList(pr.Args))
		fmt.Fprintf(&b, "\tif C.%s() == 0 {\n", id.EnabledFn)
		b.WriteString("\t\treturn\n")
		b.WriteString("\t}\n")

		callArgs := make([]string, len(pr.Args))
		for j, arg := range pr.Args {
			expr, setup, err := convertArg(arg)
			if err != nil {
				return "", fmt.Errorf("provider %s: probe %s: %w", p.Name, pr.Name, err)
			}
			for _, line := range setup {
				b.WriteString("\t" + line + "\n")
			}
			callArgs[j] = expr
		}

		fmt.Fprintf(&b, "\tC.%s(%s)\n", id.Symbol, strings.Join(callArgs, ", "))
		b.WriteString("}\n")
	}

	return b.String(), nil
}

// ExportName turns a provider/probe identity into an exported Go name:
// db + query_slow -> DbQuerySlow. Distinct identities may collide here, the
// mapping is not injective; Emit rejects such providers.
func ExportName(id ident.Identifier) string {
	return camel(id.Provider) + camel(id.Probe)
}

func camel(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

func goParamList(args []probe.Argument) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = fmt.Sprintf("arg%d %s", arg.Position, goParamType(arg.Source))
	}
	return strings.Join(parts, ", ")
}

func goParamType(t probe.Type) string {
	switch t {
	case probe.TypeBool:
		return "bool"
	case probe.TypeInt8:
		return "int8"
	case probe.TypeInt16:
		return "int16"
	case probe.TypeInt32:
		return "int32"
	case probe.TypeInt64:
		return "int64"
	case probe.TypeInt:
		return "int"
	case probe.TypeUint8:
		return "uint8"
	case probe.TypeUint16:
		return "uint16"
	case probe.TypeUint32:
		return "uint32"
	case probe.TypeUint64:
		return "uint64"
	case probe.TypeUint:
		return "uint"
	case probe.TypeUintptr:
		return "uintptr"
	case probe.TypeString:
		return "string"
	case probe.TypePointer, probe.TypeUnsafePointer:
		return "unsafe.Pointer"
	default:
		return "/* unsupported */"
	}
}

// convertArg yields the C call expression for one argument plus any setup
// statements it needs before the call.
func convertArg(arg probe.Argument) (expr string, setup []string, err error) {
	name := fmt.Sprintf("arg%d", arg.Position)
	cname := "c" + name

	switch arg.Encoded.Kind {
	case probe.EncodingStringPointer:
		setup = []string{
			fmt.Sprintf("%s := C.CString(%s)", cname, name),
			fmt.Sprintf("defer C.free(unsafe.Pointer(%s))", cname),
		}
		return cname, setup, nil

	case probe.EncodingPointer:
		if arg.Source == probe.TypeUintptr {
			return fmt.Sprintf("unsafe.Pointer(%s)", name), nil, nil
		}
		return name, nil, nil

	case probe.EncodingInteger:
		if arg.Source == probe.TypeBool {
			setup = []string{
				fmt.Sprintf("var %s C.uint8_t", cname),
				fmt.Sprintf("if %s {", name),
				fmt.Sprintf("\t%s = 1", cname),
				"}",
			}
			return cname, setup, nil
		}
		sign := "u"
		if arg.Encoded.Signed {
			sign = ""
		}
		return fmt.Sprintf("C.%sint%d_t(%s)", sign, arg.Encoded.Width*8, name), nil, nil

	default:
		return "", nil, fmt.Errorf("argument %d is not encoded", arg.Position)
	}
}
