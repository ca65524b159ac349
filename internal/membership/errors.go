package membership

import (
	"errors"
	"net/http"
)

// Ledger errors. Business ineligibility (wrong day, expired, no sessions for
// a quote) is reported as data by the booking and pricing packages, not here.
var (
	// ErrNotFound is returned for unknown membership, client or plan ids.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when a request is rejected before any mutation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientSessions is returned when a deduction finds no balance left.
	ErrInsufficientSessions = errors.New("insufficient sessions")

	// ErrNotSessionBased is returned for balance operations on discount memberships.
	ErrNotSessionBased = errors.New("membership is not session based")

	// ErrNotActive is returned when the stored status forbids the operation.
	ErrNotActive = errors.New("membership is not active")

	// ErrConcurrencyConflict is returned when another writer changed the
	// membership between read and write.
	ErrConcurrencyConflict = errors.New("concurrency conflict: version mismatch")
)

// Error codes carried by *Error.
const (
	CodeNotFound             = "not_found"
	CodeInvalidInput         = "invalid_input"
	CodeInsufficientSessions = "insufficient_sessions"
	CodeNotSessionBased      = "not_session_based"
	CodeNotActive            = "not_active"
	CodeConflict             = "conflict"
	CodeInternal             = "internal"
)

// Error wraps a ledger error with a machine-readable code and a message fit
// for the operator.
type Error struct {
	Err     error
	Message string
	Code    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error, deriving the code from err.
func NewError(err error, message string) *Error {
	return &Error{Err: err, Message: message, Code: codeFor(err)}
}

func codeFor(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrInsufficientSessions):
		return CodeInsufficientSessions
	case errors.Is(err, ErrNotSessionBased):
		return CodeNotSessionBased
	case errors.Is(err, ErrNotActive):
		return CodeNotActive
	case errors.Is(err, ErrConcurrencyConflict):
		return CodeConflict
	default:
		return CodeInternal
	}
}

func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }
func IsConflict(err error) bool     { return errors.Is(err, ErrConcurrencyConflict) }

// Code returns the code of the first *Error in err's chain, or one derived
// from the sentinel it wraps.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	return codeFor(err)
}

// StatusCode maps a ledger error to an HTTP status.
func StatusCode(err error) int {
	switch Code(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeInsufficientSessions, CodeNotSessionBased, CodeNotActive:
		return http.StatusUnprocessableEntity
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
