package types

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput is returned when boundary data cannot be decoded,
	// e.g. lengths that overrun the declared region or a missing delimiter.
	ErrMalformedInput = errors.New("malformed input")

	// ErrUnsupportedConfiguration is returned when the automaton cannot be
	// built with the requested configuration.
	ErrUnsupportedConfiguration = errors.New("unsupported configuration")

	// ErrResourceExhausted is returned when an allocation cannot be satisfied.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrContractViolation is returned when a handle is stale, foreign or of
	// the wrong kind.
	ErrContractViolation = errors.New("contract violation")
)

// Status is the numeric error code reported across the boundary.
type Status uint32

const (
	StatusOK Status = iota
	StatusMalformedInput
	StatusUnsupportedConfiguration
	StatusResourceExhausted
	StatusContractViolation
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMalformedInput:
		return "malformed input"
	case StatusUnsupportedConfiguration:
		return "unsupported configuration"
	case StatusResourceExhausted:
		return "resource exhausted"
	case StatusContractViolation:
		return "contract violation"
	default:
		return fmt.Sprintf("Status(%d)", uint32(s))
	}
}

// StatusOf maps an error onto its boundary status code. Errors outside the
// taxonomy map to StatusUnsupportedConfiguration since they can only come
// from the automaton.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrMalformedInput):
		return StatusMalformedInput
	case errors.Is(err, ErrResourceExhausted):
		return StatusResourceExhausted
	case errors.Is(err, ErrContractViolation):
		return StatusContractViolation
	default:
		return StatusUnsupportedConfiguration
	}
}

// ErrorFor rebuilds an error from a status code and message read back from
// the boundary. It returns nil for StatusOK.
func ErrorFor(s Status, msg string) error {
	var base error
	switch s {
	case StatusOK:
		return nil
	case StatusMalformedInput:
		base = ErrMalformedInput
	case StatusUnsupportedConfiguration:
		base = ErrUnsupportedConfiguration
	case StatusResourceExhausted:
		base = ErrResourceExhausted
	case StatusContractViolation:
		base = ErrContractViolation
	default:
		return fmt.Errorf("unknown status %d: %s", uint32(s), msg)
	}
	if msg == "" {
		return base
	}
	return &statusError{base: base, msg: msg}
}

// statusError keeps the original message text while still matching the
// sentinel with errors.Is.
type statusError struct {
	base error
	msg  string
}

func (e *statusError) Error() string { return e.msg }
func (e *statusError) Unwrap() error { return e.base }
