package application

import (
	"errors"

	"github.com/example/meeting-reservations/internal/scheduler"
)

var (
	// ErrNotFound is returned when a referenced meeting, room or user does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrConflict is returned when a booking overlaps another or a room would overflow.
	ErrConflict = errors.New("application: conflict")
	// ErrAlreadyTerminal is returned when a cancelled or completed meeting would be mutated.
	ErrAlreadyTerminal = errors.New("application: meeting already terminal")
	// ErrAlreadyExists is returned when a unique attribute such as an email is taken.
	ErrAlreadyExists = errors.New("application: already exists")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error. The first message for a field wins.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, exists := v.FieldErrors[field]; exists {
		return
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

// ConflictError explains why a booking or attendee change was refused.
// errors.Is(err, ErrConflict) holds for every ConflictError.
type ConflictError struct {
	Reason    string
	Conflicts []scheduler.Conflict
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}

func (e *ConflictError) Unwrap() error { return ErrConflict }
