package domain

import "errors"

// Domain error kinds. Adapters wrap these; callers match with errors.Is.
var (
	ErrNotFound      = notFoundError("not found")
	ErrValidation    = validationError("invalid data")
	ErrNetwork       = networkError("network failure")
	ErrUnauthorized  = authorizationError("unauthorized")
	ErrDataIntegrity = integrityError("malformed persisted state")
)

type notFoundError string

func (e notFoundError) Error() string { return string(e) }

type validationError string

func (e validationError) Error() string { return string(e) }

type networkError string

func (e networkError) Error() string { return string(e) }

type authorizationError string

func (e authorizationError) Error() string { return string(e) }

type integrityError string

func (e integrityError) Error() string { return string(e) }

// ValidationError carries a message meant for the user.
type ValidationError struct {
	Message string
}

func NewValidationError(msg string) *ValidationError { return &ValidationError{Message: msg} }

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// UserMessage returns the user-facing text of a ValidationError, or fallback.
func UserMessage(err error, fallback string) string {
	var ve *ValidationError
	if errors.As(err, &ve) && ve.Message != "" {
		return ve.Message
	}
	return fallback
}
