package errors

import (
	stderrors "errors"
	"fmt"
)

// ValidationError is malformed operator input, rejected before any mutation.
// Message is shown to the operator as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation builds a ValidationError.
func Validation(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// TransientActionError wraps a gateway failure that happened after the
// ledger was already committed. It is reported, never retried.
type TransientActionError struct {
	Action string
	Err    error
}

func (e *TransientActionError) Error() string {
	return fmt.Sprintf("acción %s fallida: %v", e.Action, e.Err)
}

func (e *TransientActionError) Unwrap() error {
	return e.Err
}

// Transient wraps err as a TransientActionError. Nil stays nil.
func Transient(action string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientActionError{Action: action, Err: err}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return stderrors.As(err, &v)
}

// IsTransient reports whether err carries a TransientActionError.
func IsTransient(err error) bool {
	var t *TransientActionError
	return stderrors.As(err, &t)
}

// UserMessage returns the text an operator should see for err.
func UserMessage(err error) string {
	var v *ValidationError
	if stderrors.As(err, &v) {
		return v.Message
	}
	return "Ocurrió un error interno, intenta de nuevo más tarde."
}
