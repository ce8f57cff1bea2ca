// Package apperr defines the typed business failures surfaced to API callers.
package apperr

import "errors"

// Kind classifies a business failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindBadParameter
	KindResourceNotFound
	KindDuplicateEntry
	KindBadCredentials
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindBadParameter:
		return "bad_parameter"
	case KindResourceNotFound:
		return "resource_not_found"
	case KindDuplicateEntry:
		return "duplicate_entry"
	case KindBadCredentials:
		return "bad_credentials"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Error is a classified failure with a fixed, user-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind when the target carries no message,
// so callers can write errors.Is(err, apperr.ErrResourceNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// Kind sentinels for errors.Is checks.
var (
	ErrBadParameter     = &Error{Kind: KindBadParameter}
	ErrResourceNotFound = &Error{Kind: KindResourceNotFound}
	ErrDuplicateEntry   = &Error{Kind: KindDuplicateEntry}
	ErrBadCredentials   = &Error{Kind: KindBadCredentials}
	ErrUnauthorized     = &Error{Kind: KindUnauthorized}
)

func BadParameter(msg string) error     { return &Error{Kind: KindBadParameter, Message: msg} }
func ResourceNotFound(msg string) error { return &Error{Kind: KindResourceNotFound, Message: msg} }
func DuplicateEntry(msg string) error   { return &Error{Kind: KindDuplicateEntry, Message: msg} }
func BadCredentials(msg string) error   { return &Error{Kind: KindBadCredentials, Message: msg} }
func Unauthorized(msg string) error     { return &Error{Kind: KindUnauthorized, Message: msg} }

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}
