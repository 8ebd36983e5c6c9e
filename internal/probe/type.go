package probe

import (
	"encoding"
	"fmt"
)

// Type is the semantic source type tag of a probe argument.
type Type int

const (
	TypeInvalid Type = iota

	TypeBool
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeInt
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeUint
	TypeUintptr
	TypeString
	TypePointer
	TypeUnsafePointer
)

var typeValueMap = map[Type]string{
	TypeBool:          "bool",
	TypeInt8:          "int8",
	TypeInt16:         "int16",
	TypeInt32:         "int32",
	TypeInt64:         "int64",
	TypeInt:           "int",
	TypeUint8:         "uint8",
	TypeUint16:        "uint16",
	TypeUint32:        "uint32",
	TypeUint64:        "uint64",
	TypeUint:          "uint",
	TypeUintptr:       "uintptr",
	TypeString:        "string",
	TypePointer:       "pointer",
	TypeUnsafePointer: "unsafe.Pointer",
}

func (t Type) String() string {
	v, ok := typeValueMap[t]
	if !ok {
		return fmt.Sprintf("invalid(%d)", t)
	}

	return v
}

var _ encoding.TextUnmarshaler = (*Type)(nil)

// UnmarshalText for setting values with configs, CLI, etc.
func (t *Type) UnmarshalText(rawtext []byte) error {
	text := string(rawtext)
	for k, v := range typeValueMap {
		if v == text {
			*t = k
			return nil
		}
	}

	return fmt.Errorf("unknown argument source type %q", text)
}

func (t Type) MarshalText() ([]byte, error) {
	v, ok := typeValueMap[t]
	if !ok {
		return nil, fmt.Errorf("cannot marshal invalid Type(%d)", t)
	}

	return []byte(v), nil
}
