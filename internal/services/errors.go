package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rxtech-lab/starpass-mcp/internal/models"
)

var (
	// ErrOperationNotBuildable is returned when building a call for an operation
	// that does not write to the contract.
	ErrOperationNotBuildable = errors.New("operation does not produce a contract call")
	// ErrSessionResolved is returned when a wallet reports on a session that
	// already reached a terminal status.
	ErrSessionResolved = errors.New("transaction session already resolved")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionNotFound = errors.New("session not found")
)

// FieldError is a single rejected input.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every field that failed validation, in the order the
// operation declares its fields.
type ValidationError struct {
	Operation models.Operation `json:"operation"`
	Fields    []FieldError     `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	if e.Operation == "" {
		return "invalid input: " + strings.Join(parts, "; ")
	}
	return fmt.Sprintf("invalid %s request: %s", e.Operation, strings.Join(parts, "; "))
}

// Field returns the reason recorded for name, if any.
func (e *ValidationError) Field(name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Field == name {
			return f.Reason, true
		}
	}
	return "", false
}

// DispatchError is a failed submission. The user declined, the wallet errored,
// the session expired, or the call could not be encoded or persisted.
type DispatchError struct {
	Operation models.Operation
	SessionID string
	Err       error
}

func (e *DispatchError) Error() string {
	if e.SessionID == "" {
		return fmt.Sprintf("%s dispatch failed: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s dispatch failed (session %s): %v", e.Operation, e.SessionID, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// QueryError is a failed read-only call.
type QueryError struct {
	Function string
	Err      error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("read-only call %s failed: %v", e.Function, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
