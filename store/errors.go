package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned, wrapped with the entity name, on a lookup miss.
	ErrNotFound = errors.New("not found")
	// ErrConflict is matched by every *ConflictError.
	ErrConflict = errors.New("already exists")
	// ErrInvalid is matched by every *ValidationError.
	ErrInvalid = errors.New("invalid input")
	// ErrStore is matched by every *StoreError.
	ErrStore = errors.New("store failure")
	// ErrInvalidCredentials is returned when an email/password pair does not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError reports input that is missing or malformed, keyed by the
// form field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + " " + e.Fields[name]
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Field returns the message for a single field, or "".
func (e *ValidationError) Field(name string) string {
	return e.Fields[name]
}

// ConflictError reports a uniqueness violation.
type ConflictError struct {
	Entity string
	Field  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with this %s %s", e.Entity, e.Field, ErrConflict)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// StoreError wraps any other failure of the remote store.
type StoreError struct {
	Op     string
	Entity string
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StoreError) Unwrap() []error { return []error{ErrStore, e.Err} }
