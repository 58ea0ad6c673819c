package authprogram

import "fmt"

type (
	Kind byte

	// Error is returned by Service for every failure a client can act on,
	// anything else is an internal error.
	Error struct {
		Kind    Kind
		Message string
		cause   error
	}
)

const (
	Internal Kind = iota
	AlreadyRegistered
	InvalidCredentials
	NotAuthenticated
	InvalidSession
	InvalidInput
)

var (
	ErrAlreadyRegistered  = Error{Kind: AlreadyRegistered, Message: "Email already registered"}
	ErrInvalidCredentials = Error{Kind: InvalidCredentials, Message: "Invalid credentials"}
	ErrNotAuthenticated   = Error{Kind: NotAuthenticated, Message: "Not authenticated"}
	ErrInvalidSession     = Error{Kind: InvalidSession, Message: "Invalid session"}
)

func (k Kind) String() string {
	switch k {
	case AlreadyRegistered:
		return "already-registered"
	case InvalidCredentials:
		return "invalid-credentials"
	case NotAuthenticated:
		return "not-authenticated"
	case InvalidSession:
		return "invalid-session"
	case InvalidInput:
		return "invalid-input"
	}
	return "internal"
}

func (e Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%v: %v, cause %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Message)
}

func (e Error) Unwrap() error {
	return e.cause
}

// Is matches any Error of the same kind regardless of message or cause.
func (e Error) Is(target error) bool {
	other, ok := target.(Error)
	return ok && other.Kind == e.Kind
}

func (e Error) withCause(err error) Error {
	e.cause = err
	return e
}

func invalidInput(msg string) Error {
	return Error{Kind: InvalidInput, Message: msg}
}
