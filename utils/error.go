package utils

import (
	"errors"
	"fmt"
)

var (
	ErrorRecordNotFound = errors.New("record not found")
	ErrorBaseRequired   = errors.New("base id is required")
	ErrorUnauthorized   = errors.New("unauthorized")
	ErrorForbidden      = errors.New("forbidden")
	ErrorDuplicate      = errors.New("duplicate record")
	ErrorInvalid        = errors.New("invalid input")
	ErrorConflict       = errors.New("conflict")
)

// DomainError carries a user-facing message and one of the sentinels above as its kind.
// Anything that is not a DomainError or a sentinel is treated as a server fault.
type DomainError struct {
	Kind    error
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Unwrap() error { return e.Kind }

func Invalid(msg string) error { return &DomainError{Kind: ErrorInvalid, Message: msg} }

func Invalidf(format string, args ...any) error {
	return &DomainError{Kind: ErrorInvalid, Message: fmt.Sprintf(format, args...)}
}

func Duplicate(msg string) error { return &DomainError{Kind: ErrorDuplicate, Message: msg} }

// Conflict is for requests that are valid but clash with current state (in use, locked).
func Conflict(msg string) error { return &DomainError{Kind: ErrorConflict, Message: msg} }

func NotFound(msg string) error { return &DomainError{Kind: ErrorRecordNotFound, Message: msg} }

func Unauthorized(msg string) error { return &DomainError{Kind: ErrorUnauthorized, Message: msg} }

func Forbidden(msg string) error { return &DomainError{Kind: ErrorForbidden, Message: msg} }
