package auth

import "errors"

// Sentinel errors for authentication and authorization.
var (
	// Authentication errors
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrTokenMalformed     = errors.New("auth: token malformed")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// Authorization errors
	ErrForbidden = errors.New("auth: access denied")
)
