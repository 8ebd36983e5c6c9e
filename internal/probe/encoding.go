package probe

import "fmt"

// EncodingKind classifies how an argument value crosses the probe boundary.
type EncodingKind int

const (
	EncodingInvalid EncodingKind = iota

	// EncodingInteger passes the value in a fixed-width integer slot.
	EncodingInteger

	// EncodingPointer passes an opaque machine address.
	EncodingPointer

	// EncodingStringPointer passes the address of a NUL-terminated string.
	EncodingStringPointer

	// EncodingUnsupported marks a source type the target ABI cannot carry.
	// It never survives a successful encoding pass.
	EncodingUnsupported
)

// Encoding is the ABI-level form of one argument. Width and Signed are
// meaningful for EncodingInteger only.
type Encoding struct {
	Kind   EncodingKind
	Width  int // bytes
	Signed bool
}

func (e Encoding) String() string {
	switch e.Kind {
	case EncodingInteger:
		sign := "u"
		if e.Signed {
			sign = "i"
		}
		return fmt.Sprintf("%s%d", sign, e.Width*8)
	case EncodingPointer:
		return "ptr"
	case EncodingStringPointer:
		return "strptr"
	case EncodingUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("encoding-invalid(%d)", e.Kind)
	}
}
