// Package apperror defines the error taxonomy shared by every layer.
//
// Each kind is a sentinel error. Constructors wrap the sentinel in an *AppError
// that carries a human-readable message, so callers can test the kind with
// errors.Is and read the message with errors.As.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrValidation            = errors.New("validation error")
	ErrConflict              = errors.New("conflict")
	ErrEmptyInput            = errors.New("empty input")
	ErrPredictionUnavailable = errors.New("prediction unavailable")
	ErrStore                 = errors.New("store error")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying error, kept for logs only
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel and the cause to errors.Is / errors.As.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// NotFoundMessage is NotFound with a caller-chosen message, for endpoints whose
// clients match on the exact text.
func NotFoundMessage(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// EmptyInput reports an ability input whose sample list has no values,
// so no mean can be taken.
func EmptyInput(field string) *AppError {
	return &AppError{
		Err:     ErrEmptyInput,
		Message: fmt.Sprintf("%s must contain at least one value", field),
		Field:   field,
	}
}

// PredictionUnavailable reports that the fuzzy system produced no crisp output.
func PredictionUnavailable(message string) *AppError {
	return &AppError{
		Err:     ErrPredictionUnavailable,
		Message: message,
	}
}

// Store wraps a persistence failure. The message stays generic; the cause is
// only meant for logs.
func Store(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrStore,
		Message: fmt.Sprintf("storage failure while %s", op),
		Cause:   cause,
	}
}
