package auth

import "errors"

// Sentinel errors for authentication operations.
var (
	// ErrInvalidCredentials indicates the supplied username or password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenInvalid indicates a JWT failed signature or claim validation.
	ErrTokenInvalid = errors.New("invalid token")
)
