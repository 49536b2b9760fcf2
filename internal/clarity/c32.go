package clarity

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const c32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// Address versions of standard principals.
const (
	AddressVersionMainnetSingleSig byte = 22
	AddressVersionMainnetMultiSig  byte = 20
	AddressVersionTestnetSingleSig byte = 26
	AddressVersionTestnetMultiSig  byte = 21
)

var ErrInvalidAddress = errors.New("invalid stacks address")

var c32Normalizer = strings.NewReplacer("O", "0", "L", "1", "I", "1")

func c32Encode(data []byte) string {
	n := new(big.Int).SetBytes(data)
	base := big.NewInt(32)
	mod := new(big.Int)

	var out []byte
	for n.Sign() > 0 {
		n.DivMod(n, base, mod)
		out = append(out, c32Alphabet[mod.Int64()])
	}
	for _, b := range data {
		if b != 0 {
			break
		}
		out = append(out, c32Alphabet[0])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

func c32Decode(s string) ([]byte, error) {
	s = c32Normalizer.Replace(strings.ToUpper(s))

	n := new(big.Int)
	base := big.NewInt(32)
	for i := 0; i < len(s); i++ {
		idx := strings.IndexByte(c32Alphabet, s[i])
		if idx < 0 {
			return nil, fmt.Errorf("%w: invalid c32 character %q", ErrInvalidAddress, s[i])
		}
		n.Mul(n, base)
		n.Add(n, big.NewInt(int64(idx)))
	}

	leading := len(s) - len(strings.TrimLeft(s, c32Alphabet[:1]))
	return append(make([]byte, leading), n.Bytes()...), nil
}

func c32Checksum(version byte, data []byte) []byte {
	first := sha256.Sum256(append([]byte{version}, data...))
	second := sha256.Sum256(first[:])
	return second[:4]
}

// EncodeAddress renders a version and hash160 as a c32check address.
func EncodeAddress(version byte, hash [20]byte) (string, error) {
	if int(version) >= len(c32Alphabet) {
		return "", fmt.Errorf("%w: version %d out of range", ErrInvalidAddress, version)
	}
	payload := append(hash[:], c32Checksum(version, hash[:])...)
	return "S" + string(c32Alphabet[version]) + c32Encode(payload), nil
}

// DecodeAddress parses a c32check address and verifies its checksum.
func DecodeAddress(address string) (byte, [20]byte, error) {
	var hash [20]byte
	address = strings.ToUpper(address)
	if len(address) < 5 || address[0] != 'S' {
		return 0, hash, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	version := strings.IndexByte(c32Alphabet, c32Normalizer.Replace(address[1:2])[0])
	if version < 0 {
		return 0, hash, fmt.Errorf("%w: invalid version character in %q", ErrInvalidAddress, address)
	}
	data, err := c32Decode(address[2:])
	if err != nil {
		return 0, hash, err
	}
	if len(data) != 24 {
		return 0, hash, fmt.Errorf("%w: %q decodes to %d bytes", ErrInvalidAddress, address, len(data))
	}
	if !bytes.Equal(c32Checksum(byte(version), data[:20]), data[20:]) {
		return 0, hash, fmt.Errorf("%w: checksum mismatch for %q", ErrInvalidAddress, address)
	}
	copy(hash[:], data[:20])
	return byte(version), hash, nil
}
