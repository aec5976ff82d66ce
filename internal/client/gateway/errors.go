package gateway

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vedran77/chatty/internal/apierr"
)

// Error is the one shape every gateway failure takes. It mirrors the
// server's error envelope; transport failures carry Status 0.
type Error struct {
	Status  int
	Type    string
	Message string
	Stack   string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s (%d): %s", e.Type, e.Status, e.Message)
}

// Is matches a category sentinel, so errors.Is(err, ErrAuth) works for any
// auth failure regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Status == 0 && t.Message == "" {
		return e.Type == t.Type
	}
	return e == t
}

// Category sentinels for errors.Is.
var (
	ErrTransport  = &Error{Type: apierr.TypeTransport}
	ErrValidation = &Error{Type: apierr.TypeValidation}
	ErrAuth       = &Error{Type: apierr.TypeAuth}
	ErrConflict   = &Error{Type: apierr.TypeConflict}
	ErrNotFound   = &Error{Type: apierr.TypeNotFound}
	ErrInternal   = &Error{Type: apierr.TypeInternal}
)

// AsError returns the *Error inside err, or wraps a foreign error as an
// InternalError. nil stays nil.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr
	}
	return &Error{Type: apierr.TypeInternal, Message: err.Error()}
}

func transportError(err error) *Error {
	return &Error{Type: apierr.TypeTransport, Message: err.Error()}
}

// envelopeError builds the error for a non-2xx response from its decoded
// body. Missing fields are filled in from the status code.
func envelopeError(status int, env apierr.Envelope) *Error {
	e := &Error{
		Status:  status,
		Type:    env.Type,
		Message: env.Message,
		Stack:   env.Stack,
	}
	if e.Type == "" {
		e.Type = apierr.TypeForStatus(status)
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}
