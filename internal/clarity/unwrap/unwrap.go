/*
Package unwrap converts the results of read-only contract calls into plain Go
values. Each function accepts the (value, error) pair returned by a read-only
call, passes through the error, strips (ok ...) and (some ...) wrappers, turns
(err ...) and none into errors and finally checks the remaining type.
*/
package unwrap

import (
	"errors"
	"fmt"

	"github.com/rxtech-lab/starpass-mcp/internal/clarity"
)

var (
	// ErrNone is returned when the call yields none.
	ErrNone = errors.New("no value")
	// ErrResponse is returned when the call yields (err ...).
	ErrResponse = errors.New("contract returned an error response")
)

// Item strips response-ok and optional-some wrappers from the value.
func Item(v clarity.Value, err error) (clarity.Value, error) {
	if err != nil {
		return clarity.Value{}, err
	}
	for {
		switch v.Type {
		case clarity.TypeResponseOk, clarity.TypeSome:
			if v.Inner == nil {
				return clarity.Value{}, fmt.Errorf("%s without inner value", v.Type)
			}
			v = *v.Inner
		case clarity.TypeResponseErr:
			return clarity.Value{}, fmt.Errorf("%w: %s", ErrResponse, v)
		case clarity.TypeNone:
			return clarity.Value{}, ErrNone
		default:
			return v, nil
		}
	}
}

// UInt64 expects a uint that fits into 64 bits.
func UInt64(v clarity.Value, err error) (uint64, error) {
	itm, err := Item(v, err)
	if err != nil {
		return 0, err
	}
	if itm.Type != clarity.TypeUInt || itm.UInt == nil {
		return 0, fmt.Errorf("expected uint, got %s", itm.Type)
	}
	if !itm.UInt.IsUint64() {
		return 0, errors.New("uint64 overflow")
	}
	return itm.UInt.Uint64(), nil
}

// LimitedUInt64 is UInt64 with an inclusive upper bound.
func LimitedUInt64(v clarity.Value, err error, max uint64) (uint64, error) {
	u, err := UInt64(v, err)
	if err != nil {
		return 0, err
	}
	if u > max {
		return 0, fmt.Errorf("value %d exceeds %d", u, max)
	}
	return u, nil
}

// Principal expects a standard or contract principal and returns its
// textual form.
func Principal(v clarity.Value, err error) (string, error) {
	itm, err := Item(v, err)
	if err != nil {
		return "", err
	}
	switch itm.Type {
	case clarity.TypeStandardPrincipal, clarity.TypeContractPrincipal:
		return itm.String(), nil
	default:
		return "", fmt.Errorf("expected principal, got %s", itm.Type)
	}
}

// String expects a string-ascii or string-utf8 value.
func String(v clarity.Value, err error) (string, error) {
	itm, err := Item(v, err)
	if err != nil {
		return "", err
	}
	if itm.Type != clarity.TypeStringASCII && itm.Type != clarity.TypeStringUTF8 {
		return "", fmt.Errorf("expected string, got %s", itm.Type)
	}
	return itm.Str, nil
}

// Bool expects a boolean.
func Bool(v clarity.Value, err error) (bool, error) {
	itm, err := Item(v, err)
	if err != nil {
		return false, err
	}
	switch itm.Type {
	case clarity.TypeTrue:
		return true, nil
	case clarity.TypeFalse:
		return false, nil
	default:
		return false, fmt.Errorf("expected bool, got %s", itm.Type)
	}
}
