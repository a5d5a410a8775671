package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Pipeline error taxonomy. Collaborator adapters translate transport
// failures into these sentinels at the boundary; the processor records the
// message verbatim and never retries internally.
var (
	ErrNotFound          = errors.New("document not found")
	ErrSourceUnavailable = errors.New("content source unavailable")
	ErrGenerationFailed  = errors.New("quiz generation failed")
	ErrPublishFailed     = errors.New("form publish failed")
	ErrStoreUnavailable  = errors.New("record store unavailable")
	ErrInvalidInput      = errors.New("invalid input")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
