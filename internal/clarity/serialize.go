package clarity

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

var (
	ErrUnsupportedType = errors.New("unsupported clarity type")
	ErrTruncated       = errors.New("truncated clarity value")
)

const maxContractNameLength = 128

// Serialize encodes the value in the Clarity consensus wire format.
func (v Value) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Hex returns the 0x-prefixed hex of the serialized value, the form the
// Stacks node API accepts for read-only call arguments.
func (v Value) Hex() (string, error) {
	b, err := v.Serialize()
	if err != nil {
		return "", err
	}
	return hexutil.Encode(b), nil
}

func (v Value) writeTo(buf *bytes.Buffer) error {
	switch v.Type {
	case TypeUInt:
		n := v.UInt
		if n == nil {
			n = new(uint256.Int)
		}
		if n.BitLen() > 128 {
			return fmt.Errorf("uint %s overflows 128 bits", n.Dec())
		}
		b := n.Bytes32()
		buf.WriteByte(byte(TypeUInt))
		buf.Write(b[16:])
	case TypeTrue, TypeFalse, TypeNone:
		buf.WriteByte(byte(v.Type))
	case TypeStandardPrincipal:
		version, hash, err := DecodeAddress(v.Principal)
		if err != nil {
			return err
		}
		buf.WriteByte(byte(TypeStandardPrincipal))
		buf.WriteByte(version)
		buf.Write(hash[:])
	case TypeContractPrincipal:
		version, hash, err := DecodeAddress(v.Principal)
		if err != nil {
			return err
		}
		if len(v.ContractName) == 0 || len(v.ContractName) > maxContractNameLength {
			return fmt.Errorf("invalid contract name length %d", len(v.ContractName))
		}
		buf.WriteByte(byte(TypeContractPrincipal))
		buf.WriteByte(version)
		buf.Write(hash[:])
		buf.WriteByte(byte(len(v.ContractName)))
		buf.WriteString(v.ContractName)
	case TypeStringASCII:
		for i := 0; i < len(v.Str); i++ {
			if v.Str[i] > 0x7f {
				return fmt.Errorf("string-ascii contains non-ascii byte at %d", i)
			}
		}
		writeLengthPrefixed(buf, v.Type, []byte(v.Str))
	case TypeStringUTF8:
		if !utf8.ValidString(v.Str) {
			return errors.New("string-utf8 contains invalid utf-8")
		}
		writeLengthPrefixed(buf, v.Type, []byte(v.Str))
	case TypeBuffer:
		writeLengthPrefixed(buf, v.Type, v.Buffer)
	case TypeSome, TypeResponseOk, TypeResponseErr:
		if v.Inner == nil {
			return fmt.Errorf("%s value without inner value", v.Type)
		}
		buf.WriteByte(byte(v.Type))
		return v.Inner.writeTo(buf)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, v.Type)
	}
	return nil
}

func writeLengthPrefixed(buf *bytes.Buffer, t Type, data []byte) {
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(data)))
	buf.WriteByte(byte(t))
	buf.Write(size[:])
	buf.Write(data)
}

// Deserialize decodes a single Clarity value, rejecting trailing bytes.
func Deserialize(data []byte) (Value, error) {
	r := &reader{data: data}
	v, err := r.value()
	if err != nil {
		return Value{}, err
	}
	if r.off != len(data) {
		return Value{}, fmt.Errorf("%d trailing bytes after clarity value", len(data)-r.off)
	}
	return v, nil
}

// DeserializeHex decodes a 0x-prefixed hex encoded Clarity value.
func DeserializeHex(s string) (Value, error) {
	b, err := decodeHex(s)
	if err != nil {
		return Value{}, err
	}
	return Deserialize(b)
}

func decodeHex(s string) ([]byte, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", s, err)
	}
	return b, nil
}

type reader struct {
	data []byte
	off  int
}

func (r *reader) next(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.data) {
		return nil, ErrTruncated
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) value() (Value, error) {
	prefix, err := r.next(1)
	if err != nil {
		return Value{}, err
	}
	t := Type(prefix[0])
	switch t {
	case TypeUInt:
		b, err := r.next(16)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: TypeUInt, UInt: new(uint256.Int).SetBytes(b)}, nil
	case TypeTrue, TypeFalse, TypeNone:
		return Value{Type: t}, nil
	case TypeStandardPrincipal, TypeContractPrincipal:
		b, err := r.next(21)
		if err != nil {
			return Value{}, err
		}
		var hash [20]byte
		copy(hash[:], b[1:])
		address, err := EncodeAddress(b[0], hash)
		if err != nil {
			return Value{}, err
		}
		if t == TypeStandardPrincipal {
			return StandardPrincipal(address), nil
		}
		size, err := r.next(1)
		if err != nil {
			return Value{}, err
		}
		name, err := r.next(int(size[0]))
		if err != nil {
			return Value{}, err
		}
		return ContractPrincipal(address, string(name)), nil
	case TypeStringASCII, TypeStringUTF8, TypeBuffer:
		size, err := r.next(4)
		if err != nil {
			return Value{}, err
		}
		b, err := r.next(int(binary.BigEndian.Uint32(size)))
		if err != nil {
			return Value{}, err
		}
		switch t {
		case TypeBuffer:
			return Buffer(append([]byte(nil), b...)), nil
		case TypeStringUTF8:
			return StringUTF8(string(b)), nil
		default:
			return StringASCII(string(b)), nil
		}
	case TypeSome, TypeResponseOk, TypeResponseErr:
		inner, err := r.value()
		if err != nil {
			return Value{}, err
		}
		return Value{Type: t, Inner: &inner}, nil
	default:
		return Value{}, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}
