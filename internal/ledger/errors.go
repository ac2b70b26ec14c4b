package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound reports an unknown ride or booking id.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied reports an authorization failure on a record the
	// requester does not own.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrTooLate reports a cancellation attempted within the cutoff window
	// before travel.
	ErrTooLate = errors.New("cannot cancel booking less than 2 hours before travel")
	// ErrConflict reports a uniqueness violation, e.g. a duplicate email.
	ErrConflict = errors.New("already exists")
	// ErrInvalidCredentials is returned for any login failure so callers
	// cannot distinguish a wrong password from an unknown email.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError aggregates field-level input violations. No record is
// created when one is returned.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) add(field, msg string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) ok() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Fields[f]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
