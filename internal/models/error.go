package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	ErrRateLimitExceeded   = errors.New("rate limit exceeded")
	ErrMailerNotConfigured = errors.New("mailer not configured")
	ErrStorageDisabled     = errors.New("object storage not configured")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUpstream            = errors.New("upstream service error")
	ErrGitHubNotConfigured = errors.New("github token not configured")
)

// ValidationError carries a message that is safe to show to the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap lets callers match validation failures with errors.Is(err, ErrBadRequest).
func (e *ValidationError) Unwrap() error {
	return ErrBadRequest
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
