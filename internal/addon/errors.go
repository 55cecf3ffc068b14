package addon

import "errors"

// Domain-specific errors for add-on API operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrFetchFailed is returned when the add-on API cannot be reached or
	// returns a non-200 status.
	ErrFetchFailed = errors.New("addon: fetch failed")

	// ErrBadResponse is returned when the add-on API returns a payload the
	// client cannot interpret.
	ErrBadResponse = errors.New("addon: bad response")
)
