package types

import (
	"errors"
	"strings"
)

var (
	ErrValidation         = errors.New("invalid sensor reading")
	ErrBackendUnavailable = errors.New("storage backend unavailable")
	ErrStorage            = errors.New("storage failure")
	ErrNoBackend          = errors.New("no usable storage backend")
)

// ValidationError lists the payload fields that were absent or unusable.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
