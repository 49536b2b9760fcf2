package clarity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// Type is the Clarity value type identifier, equal to the prefix byte of the
// consensus serialization.
type Type byte

const (
	TypeInt               Type = 0x00
	TypeUInt              Type = 0x01
	TypeBuffer            Type = 0x02
	TypeTrue              Type = 0x03
	TypeFalse             Type = 0x04
	TypeStandardPrincipal Type = 0x05
	TypeContractPrincipal Type = 0x06
	TypeResponseOk        Type = 0x07
	TypeResponseErr       Type = 0x08
	TypeNone              Type = 0x09
	TypeSome              Type = 0x0a
	TypeList              Type = 0x0b
	TypeTuple             Type = 0x0c
	TypeStringASCII       Type = 0x0d
	TypeStringUTF8        Type = 0x0e
)

var typeNames = map[Type]string{
	TypeInt:               "int",
	TypeUInt:              "uint",
	TypeBuffer:            "buffer",
	TypeTrue:              "true",
	TypeFalse:             "false",
	TypeStandardPrincipal: "principal",
	TypeContractPrincipal: "contract-principal",
	TypeResponseOk:        "ok",
	TypeResponseErr:       "err",
	TypeNone:              "none",
	TypeSome:              "some",
	TypeList:              "list",
	TypeTuple:             "tuple",
	TypeStringASCII:       "string-ascii",
	TypeStringUTF8:        "string-utf8",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(0x%02x)", byte(t))
}

// ParseType returns the Type with the given name.
func ParseType(name string) (Type, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown clarity type %q", name)
}

// Value is a typed Clarity value. Only the fields relevant to Type are set.
type Value struct {
	Type Type

	// UInt holds the value of a uint.
	UInt *uint256.Int
	// Principal holds the c32 address of a standard principal, or the
	// address part of a contract principal.
	Principal string
	// ContractName is set for contract principals only.
	ContractName string
	// Str holds string-ascii and string-utf8 contents.
	Str string
	// Buffer holds buffer contents.
	Buffer []byte
	// Inner is the wrapped value of some, ok and err.
	Inner *Value
}

func UInt(v uint64) Value {
	return Value{Type: TypeUInt, UInt: uint256.NewInt(v)}
}

func StandardPrincipal(address string) Value {
	return Value{Type: TypeStandardPrincipal, Principal: address}
}

func ContractPrincipal(address, name string) Value {
	return Value{Type: TypeContractPrincipal, Principal: address, ContractName: name}
}

func StringASCII(s string) Value {
	return Value{Type: TypeStringASCII, Str: s}
}

func StringUTF8(s string) Value {
	return Value{Type: TypeStringUTF8, Str: s}
}

func Bool(b bool) Value {
	if b {
		return Value{Type: TypeTrue}
	}
	return Value{Type: TypeFalse}
}

func Buffer(b []byte) Value {
	return Value{Type: TypeBuffer, Buffer: b}
}

func Some(v Value) Value {
	return Value{Type: TypeSome, Inner: &v}
}

func None() Value {
	return Value{Type: TypeNone}
}

func Ok(v Value) Value {
	return Value{Type: TypeResponseOk, Inner: &v}
}

func Err(v Value) Value {
	return Value{Type: TypeResponseErr, Inner: &v}
}

// String renders the value in Clarity literal syntax, e.g. (some u5).
func (v Value) String() string {
	switch v.Type {
	case TypeUInt:
		if v.UInt == nil {
			return "u0"
		}
		return "u" + v.UInt.Dec()
	case TypeTrue:
		return "true"
	case TypeFalse:
		return "false"
	case TypeStandardPrincipal:
		return v.Principal
	case TypeContractPrincipal:
		return v.Principal + "." + v.ContractName
	case TypeStringASCII, TypeStringUTF8:
		return strconv.Quote(v.Str)
	case TypeBuffer:
		return fmt.Sprintf("0x%x", v.Buffer)
	case TypeNone:
		return "none"
	case TypeSome, TypeResponseOk, TypeResponseErr:
		inner := "none"
		if v.Inner != nil {
			inner = v.Inner.String()
		}
		return fmt.Sprintf("(%s %s)", v.Type, inner)
	default:
		return v.Type.String()
	}
}

// jsonValue is the wire shape handed to wallets: {"type": "uint", "value": "5"}.
type jsonValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	out := jsonValue{Type: v.Type.String()}
	var payload any
	switch v.Type {
	case TypeUInt:
		if v.UInt == nil {
			payload = "0"
		} else {
			payload = v.UInt.Dec()
		}
	case TypeStandardPrincipal:
		payload = v.Principal
	case TypeContractPrincipal:
		payload = v.Principal + "." + v.ContractName
	case TypeStringASCII, TypeStringUTF8:
		payload = v.Str
	case TypeBuffer:
		payload = fmt.Sprintf("0x%x", v.Buffer)
	case TypeSome, TypeResponseOk, TypeResponseErr:
		if v.Inner == nil {
			return nil, fmt.Errorf("%s value without inner value", v.Type)
		}
		payload = v.Inner
	case TypeTrue, TypeFalse, TypeNone:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, v.Type)
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		out.Value = raw
	}
	return json.Marshal(out)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var in jsonValue
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	t, err := ParseType(in.Type)
	if err != nil {
		return err
	}
	*v = Value{Type: t}
	switch t {
	case TypeTrue, TypeFalse, TypeNone:
		return nil
	case TypeSome, TypeResponseOk, TypeResponseErr:
		var inner Value
		if err := json.Unmarshal(in.Value, &inner); err != nil {
			return fmt.Errorf("failed to decode %s inner value: %w", t, err)
		}
		v.Inner = &inner
		return nil
	}

	var s string
	if err := json.Unmarshal(in.Value, &s); err != nil {
		return fmt.Errorf("failed to decode %s value: %w", t, err)
	}
	switch t {
	case TypeUInt:
		n, err := uint256.FromDecimal(s)
		if err != nil {
			return fmt.Errorf("invalid uint %q: %w", s, err)
		}
		v.UInt = n
	case TypeStandardPrincipal:
		v.Principal = s
	case TypeContractPrincipal:
		address, name, ok := strings.Cut(s, ".")
		if !ok {
			return fmt.Errorf("invalid contract principal %q", s)
		}
		v.Principal, v.ContractName = address, name
	case TypeStringASCII, TypeStringUTF8:
		v.Str = s
	case TypeBuffer:
		b, err := decodeHex(s)
		if err != nil {
			return err
		}
		v.Buffer = b
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	return nil
}
