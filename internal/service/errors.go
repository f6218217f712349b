package service

import "errors"

// Sentinel errors returned by the auth, setup and reset services. Handlers
// translate them into HTTP responses; none of them carry internal detail.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidToken         = errors.New("invalid token")
	ErrAdminExists          = errors.New("admin already exists")
	ErrAdminNotFound        = errors.New("admin account not found")
	ErrNoActiveReset        = errors.New("no active reset request")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
	ErrInvalidCodeOrEmail   = errors.New("invalid code or email")
)

// ValidationError reports a missing or malformed request field. Message is
// safe to show to the client as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
