package utils

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a lookup for a record that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest marks a request rejected before any calculation ran.
	ErrInvalidRequest = errors.New("invalid request")
)

// AppError wraps an operation, human-facing message, and underlying error.
type AppError struct {
	Op  string
	Msg string
	Err error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(op, msg string, err error) error {
	return &AppError{Op: op, Msg: msg, Err: err}
}

// NotFound reports a missing record of kind for op.
func NotFound(op, kind string, id fmt.Stringer) error {
	return &AppError{Op: op, Msg: fmt.Sprintf("%s %s", kind, id), Err: ErrNotFound}
}

// InvalidRequest rejects a request for op with msg.
func InvalidRequest(op, msg string) error {
	return &AppError{Op: op, Msg: msg, Err: ErrInvalidRequest}
}

// Message returns the human-facing message of the outermost AppError in err's chain,
// falling back to err.Error().
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Msg != "" {
		return appErr.Msg
	}
	return err.Error()
}
