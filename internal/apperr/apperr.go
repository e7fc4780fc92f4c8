// Package apperr classifies the errors surfaced to clients.
//
// Every error a service returns is either one of the kinds below or an
// unclassified internal failure. Transports map the kind to their own status
// codes with KindOf.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalidRequest
	KindNotFound
	KindDuplicateEntry
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid request"
	case KindNotFound:
		return "not found"
	case KindDuplicateEntry:
		return "duplicate entry"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func InvalidRequest(format string, args ...any) error {
	return &Error{Kind: KindInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func DuplicateEntry(format string, args ...any) error {
	return &Error{Kind: KindDuplicateEntry, Message: fmt.Sprintf(format, args...)}
}

// WithKind attaches a kind to an underlying error, keeping it unwrappable.
func WithKind(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-facing message of a classified error, or
// err.Error() for anything else.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

func IsInvalidRequest(err error) bool { return KindOf(err) == KindInvalidRequest }
func IsNotFound(err error) bool       { return KindOf(err) == KindNotFound }
func IsDuplicateEntry(err error) bool { return KindOf(err) == KindDuplicateEntry }
