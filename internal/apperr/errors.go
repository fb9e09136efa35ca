// Package apperr defines the error kinds surfaced by the inventory core.
// Transport code maps a Kind to a status code; domain code only constructs them.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation       Kind = "validation"
	KindDuplicateNumber  Kind = "duplicate_number"
	KindConflict         Kind = "conflict"
	KindNotFound         Kind = "not_found"
	KindUnauthorized     Kind = "unauthorized"
	KindStoreUnavailable Kind = "store_unavailable"
)

// Sentinels for errors.Is. Any *Error of the same Kind matches.
var (
	ErrValidation       = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrDuplicateNumber  = &Error{Kind: KindDuplicateNumber, Message: "number already exists"}
	ErrConflict         = &Error{Kind: KindConflict, Message: "conflict"}
	ErrNotFound         = &Error{Kind: KindNotFound, Message: "not found"}
	ErrUnauthorized     = &Error{Kind: KindUnauthorized, Message: "not allowed"}
	ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable, Message: "store unavailable"}
)

// Error is a discriminated failure: a kind plus a human readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func DuplicateNumber(number string) error {
	return &Error{Kind: KindDuplicateNumber, Message: fmt.Sprintf("number %q already exists", number)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NotFound(what string) error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func Unauthorized(format string, args ...any) error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func StoreUnavailable(err error) error {
	return &Error{Kind: KindStoreUnavailable, Message: "store unavailable", Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Message returns the user-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
