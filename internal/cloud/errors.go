package cloud

import "errors"

// Domain-specific errors for Sengled cloud operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrAuthFailed is returned when login is rejected or a session expires
	// and cannot be renewed.
	ErrAuthFailed = errors.New("cloud: authentication failed")

	// ErrFetchFailed is returned when the cloud cannot be reached or
	// returns a non-200 status.
	ErrFetchFailed = errors.New("cloud: fetch failed")

	// ErrBadResponse is returned when the cloud returns a payload the
	// client cannot interpret.
	ErrBadResponse = errors.New("cloud: bad response")
)
