// pkg/errors/errors.go
package errors

import stderrors "errors"

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// ProviderError is a failure reported by the identity platform. Code uses the
// platform's client-side naming, e.g. "auth/wrong-password".
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

func NewProviderError(code, message string) *ProviderError {
	return &ProviderError{Code: code, Message: message}
}

// ProviderCode returns the platform code carried by err, or "" when err is not
// (and does not wrap) a ProviderError.
func ProviderCode(err error) string {
	var pe *ProviderError
	if stderrors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	if e.Message == "" {
		return "internal server error"
	}
	return e.Message
}

func NewInternalError() *InternalError {
	return &InternalError{}
}

type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return e.Message
}

func NewBadRequestError(message string) *BadRequestError {
	return &BadRequestError{Message: message}
}
