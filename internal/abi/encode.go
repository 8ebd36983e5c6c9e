package abi

import (
	"fmt"

	"github.com/tracewire/usdtgen/internal/probe"
)

// encodings is the fixed, total mapping from semantic source types to probe
// slot encodings. Integral types take the smallest supported width not below
// the source width; int/uint/uintptr are sized for 64-bit targets, the only
// ones <sys/sdt.h> USDT is generated for here.
var encodings = map[probe.Type]probe.Encoding{
	probe.TypeBool:    {Kind: probe.EncodingInteger, Width: 1},
	probe.TypeInt8:    {Kind: probe.EncodingInteger, Width: 1, Signed: true},
	probe.TypeInt16:   {Kind: probe.EncodingInteger, Width: 2, Signed: true},
	probe.TypeInt32:   {Kind: probe.EncodingInteger, Width: 4, Signed: true},
	probe.TypeInt64:   {Kind: probe.EncodingInteger, Width: 8, Signed: true},
	probe.TypeInt:     {Kind: probe.EncodingInteger, Width: 8, Signed: true},
	probe.TypeUint8:   {Kind: probe.EncodingInteger, Width: 1},
	probe.TypeUint16:  {Kind: probe.EncodingInteger, Width: 2},
	probe.TypeUint32:  {Kind: probe.EncodingInteger, Width: 4},
	probe.TypeUint64:  {Kind: probe.EncodingInteger, Width: 8},
	probe.TypeUint:    {Kind: probe.EncodingInteger, Width: 8},
	probe.TypeUintptr: {Kind: probe.EncodingPointer},

	probe.TypeString: {Kind: probe.EncodingStringPointer},

	probe.TypePointer:       {Kind: probe.EncodingPointer},
	probe.TypeUnsafePointer: {Kind: probe.EncodingPointer},
}

// UnsupportedArgumentTypeError reports an argument whose source type has no
// slot encoding. It names the position and the original type spelling so the
// user can find the method parameter at fault.
type UnsupportedArgumentTypeError struct {
	Position int
	Source   probe.Type
	Display  string
}

func (e *UnsupportedArgumentTypeError) Error() string {
	display := e.Display
	if display == "" {
		display = e.Source.String()
	}
	return fmt.Sprintf("argument %d: source type %s has no probe slot encoding", e.Position, display)
}

// TooManyArgumentsError reports an argument list above the STAP_PROBEn
// arity ceiling.
type TooManyArgumentsError struct {
	Count int
	Max   int
}

func (e *TooManyArgumentsError) Error() string {
	return fmt.Sprintf("%d arguments exceed the %d-argument probe limit", e.Count, e.Max)
}

// Encode resolves the slot encoding of every argument. It is deterministic,
// order-preserving and side-effect-free: the input slice is never touched,
// the result is a fresh copy with Encoded filled in.
func Encode(args []probe.Argument) ([]probe.Argument, error) {
	if len(args) > MaxArguments {
		return nil, &TooManyArgumentsError{Count: len(args), Max: MaxArguments}
	}

	out := make([]probe.Argument, len(args))
	copy(out, args)

	for i := range out {
		enc, ok := encodings[out[i].Source]
		if !ok || enc.Kind == probe.EncodingUnsupported {
			return nil, &UnsupportedArgumentTypeError{
				Position: out[i].Position,
				Source:   out[i].Source,
				Display:  out[i].Display,
			}
		}
		out[i].Encoded = enc
	}

	return out, nil
}

// CType spells the C parameter type of an encoded argument in the generated
// entry point.
func CType(e probe.Encoding) string {
	switch e.Kind {
	case probe.EncodingInteger:
		if e.Signed {
			return fmt.Sprintf("int%d_t", e.Width*8)
		}
		return fmt.Sprintf("uint%d_t", e.Width*8)
	case probe.EncodingPointer:
		return "const void *"
	case probe.EncodingStringPointer:
		return "const char *"
	default:
		return "/* unsupported */"
	}
}
