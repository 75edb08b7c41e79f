package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced to API callers.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindAuthenticationRequired
	KindAuthorizationDenied
	KindNotFound
	KindInvalidInput
	KindVerificationFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthenticationRequired:
		return "authentication_required"
	case KindAuthorizationDenied:
		return "authorization_denied"
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindVerificationFailed:
		return "verification_failed"
	default:
		return "internal"
	}
}

// Error is a classified failure with a message safe to show to the caller.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func ErrAuthenticationRequired(format string, args ...any) error {
	return newError(KindAuthenticationRequired, format, args...)
}

func ErrAuthorizationDenied(format string, args ...any) error {
	return newError(KindAuthorizationDenied, format, args...)
}

func ErrNotFound(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

func ErrInvalidInput(format string, args ...any) error {
	return newError(KindInvalidInput, format, args...)
}

func ErrVerificationFailed(format string, args ...any) error {
	return newError(KindVerificationFailed, format, args...)
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
