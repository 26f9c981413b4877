package dispatch

import "github.com/pkg/errors"

// ErrDuplicateChannel is returned by Add when the channel is already
// registered with a dispatcher (this one or another).
var ErrDuplicateChannel = errors.New("dispatch: channel already registered with a dispatcher")

// HandlerError wraps whatever a handler returned or panicked with, so the
// originating stack is preserved across the fault-queue boundary.
type HandlerError struct {
	cause error
}

func newHandlerError(cause error) *HandlerError {
	return &HandlerError{cause: errors.WithStack(cause)}
}

func (e *HandlerError) Error() string { return e.cause.Error() }

func (e *HandlerError) Unwrap() error { return e.cause }
