package cgen

import (
	"fmt"
	"strings"

	"github.com/tracewire/usdtgen/internal/abi"
	"github.com/tracewire/usdtgen/internal/ident"
	"github.com/tracewire/usdtgen/internal/probe"
)

// Meta names the generator in attribution headers. It is passed in
// explicitly at call time, never read from ambient state.
type Meta struct {
	Tool    string
	Version string
}

// SourceFileName is the output name of the provider's C wrapper.
func SourceFileName(provider string) string {
	return provider + "_usdt.c"
}

// HeaderFileName is the output name of the provider's C declarations.
func HeaderFileName(provider string) string {
	return provider + "_usdt.h"
}

// EmitSource renders the complete C wrapper for a provider. The probes must
// already be encoded and ids must parallel them one to one.
func EmitSource(p probe.Provider, ids []ident.Identifier, meta Meta) (string, error) {
	if err := checkInput(p, ids); err != nil {
		return "", err
	}

	var b strings.Builder

	writeAttribution(&b, p, meta)
	b.WriteString("\n")
	b.WriteString("#include <stdint.h>\n")
	b.WriteString("\n")
	b.WriteString("#define _SDT_HAS_SEMAPHORES 1\n")
	b.WriteString("#include <sys/sdt.h>\n")

	for i, pr := range p.Probes {
		id := ids[i]

		b.WriteString("\n")
		fmt.Fprintf(&b, "__extension__ unsigned short %s\n", id.Semaphore)
		b.WriteString("    __attribute__((section(\".probes\"))) = 0;\n")
		b.WriteString("\n")
		fmt.Fprintf(&b, "int %s(void)\n", id.EnabledFn)
		b.WriteString("{\n")
		fmt.Fprintf(&b, "    return __builtin_expect(%s > 0, 0);\n", id.Semaphore)
		b.WriteString("}\n")
		b.WriteString("\n")
		fmt.Fprintf(&b, "void %s(%s)\n", id.Symbol, paramList(pr.Args))
		b.WriteString("{\n")
		fmt.Fprintf(&b, "    if (!%s())\n", id.EnabledFn)
		b.WriteString("        return;\n")
		fmt.Fprintf(&b, "    %s;\n", probeMacroCall(id, pr.Args))
		b.WriteString("}\n")
	}

	return b.String(), nil
}

// EmitHeader renders the declarations matching EmitSource's definitions, for
// native and cgo callers alike.
func EmitHeader(p probe.Provider, ids []ident.Identifier, meta Meta) (string, error) {
	if err := checkInput(p, ids); err != nil {
		return "", err
	}

	guard := fmt.Sprintf("USDTGEN_%s_USDT_H", strings.ToUpper(p.Name))

	var b strings.Builder

	writeAttribution(&b, p, meta)
	b.WriteString("\n")
	fmt.Fprintf(&b, "#ifndef %s\n", guard)
	fmt.Fprintf(&b, "#define %s\n", guard)
	b.WriteString("\n")
	b.WriteString("#include <stdint.h>\n")
	b.WriteString("\n")
	b.WriteString("#ifdef __cplusplus\n")
	b.WriteString("extern \"C\" {\n")
	b.WriteString("#endif\n")

	for i, pr := range p.Probes {
		id := ids[i]

		b.WriteString("\n")
		fmt.Fprintf(&b, "extern unsigned short %s;\n", id.Semaphore)
		fmt.Fprintf(&b, "int %s(void);\n", id.EnabledFn)
		fmt.Fprintf(&b, "void %s(%s);\n", id.Symbol, paramList(pr.Args))
	}

	b.WriteString("\n")
	b.WriteString("#ifdef __cplusplus\n")
	b.WriteString("}\n")
	b.WriteString("#endif\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "#endif /* %s */\n", guard)

	return b.String(), nil
}

// writeAttribution renders the informational header: generator identity plus
// the verbatim originating source snippet. C comment only, it must never
// affect parsing of the rest of the file.
func writeAttribution(b *strings.Builder, p probe.Provider, meta Meta) {
	fmt.Fprintf(b, "/* Generated by %s %s. DO NOT EDIT.\n", meta.Tool, meta.Version)
	b.WriteString(" *\n")
	fmt.Fprintf(b, " * Native wrappers for the probes of provider %s.\n", p.Name)
	if p.Source != "" {
		b.WriteString(" *\n")
		b.WriteString(" * The source of that provider is:\n")
		b.WriteString(" *\n")
		for _, line := range strings.Split(strings.TrimRight(p.Source, "\n"), "\n") {
			// A close-comment inside the snippet would terminate the header
			// early and change how everything after it parses.
			line = strings.ReplaceAll(line, "*/", "*\\/")
			if line == "" {
				b.WriteString(" *\n")
				continue
			}
			fmt.Fprintf(b, " *     %s\n", line)
		}
	}
	b.WriteString(" */\n")
}

func checkInput(p probe.Provider, ids []ident.Identifier) error {
	if len(ids) != len(p.Probes) {
		return fmt.Errorf(
			"provider %s: %d identifiers for %d probes",
			p.Name, len(ids), len(p.Probes),
		)
	}

	for _, pr := range p.Probes {
		for _, arg := range pr.Args {
			switch arg.Encoded.Kind {
			case probe.EncodingInteger, probe.EncodingPointer, probe.EncodingStringPointer:
			default:
				return fmt.Errorf(
					"provider %s: probe %s argument %d is not encoded",
					p.Name, pr.Name, arg.Position,
				)
			}
		}
	}

	return nil
}

func paramList(args []probe.Argument) string {
	if len(args) == 0 {
		return "void"
	}

	parts := make([]string, len(args))
	for i, arg := range args {
		ctype := abi.CType(arg.Encoded)
		if strings.HasSuffix(ctype, "*") {
			parts[i] = fmt.Sprintf("%sarg%d", ctype, arg.Position)
		} else {
			parts[i] = fmt.Sprintf("%s arg%d", ctype, arg.Position)
		}
	}

	return strings.Join(parts, ", ")
}

// probeMacroCall spells the fixed-arity macro invocation matching the
// argument count: STAP_PROBE for zero arguments, STAP_PROBEn otherwise.
func probeMacroCall(id ident.Identifier, args []probe.Argument) string {
	if len(args) == 0 {
		return fmt.Sprintf("STAP_PROBE(%s, %s)", id.Provider, id.Probe)
	}

	names := make([]string, len(args))
	for i, arg := range args {
		names[i] = fmt.Sprintf("arg%d", arg.Position)
	}

	return fmt.Sprintf(
		"STAP_PROBE%d(%s, %s, %s)",
		len(args), id.Provider, id.Probe, strings.Join(names, ", "),
	)
}
