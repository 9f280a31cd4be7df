// Package apperrors defines the typed errors the API surface is built on.
// Services return these; the HTTP layer maps them to the structured error
// envelope. The machine-readable code is distinct from the HTTP status so
// clients can branch without parsing messages.
package apperrors

// AuthenticationError is a "who are you" failure: bad signature, expired
// init data, invalid or expired token, unknown or blocked user. Maps to 401.
type AuthenticationError struct {
	Message string
}

func NewAuthenticationError(msg string) *AuthenticationError {
	return &AuthenticationError{Message: msg}
}

func (e *AuthenticationError) Error() string { return e.Message }

func (e *AuthenticationError) Code() string { return "AUTH_ERROR" }

// AuthorizationError is a "known but not permitted" failure. Maps to 403.
type AuthorizationError struct {
	Message string
}

func NewAuthorizationError(msg string) *AuthorizationError {
	return &AuthorizationError{Message: msg}
}

func (e *AuthorizationError) Error() string { return e.Message }

func (e *AuthorizationError) Code() string { return "AUTHZ_ERROR" }

// NotFoundError maps to 404.
type NotFoundError struct {
	Message string
}

func NewNotFoundError(msg string) *NotFoundError {
	return &NotFoundError{Message: msg}
}

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) Code() string { return "NOT_FOUND" }

// ValidationError maps to 422.
type ValidationError struct {
	Message string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Code() string { return "VALIDATION_ERROR" }

// ConflictError covers uniqueness violations surfaced to the client,
// e.g. a duplicate catalog code. Maps to 400 like the duplicate-code
// branch of the original handlers.
type ConflictError struct {
	Message string
}

func NewConflictError(msg string) *ConflictError {
	return &ConflictError{Message: msg}
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Code() string { return "CONFLICT" }
