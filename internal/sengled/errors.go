package sengled

import "errors"

// Domain-specific errors for the Sengled protocol layer.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrColorFormat is returned when a colour value is not in the
	// "r:g:b" wire format.
	ErrColorFormat = errors.New("sengled: invalid color format")

	// ErrStatusFormat is returned when a status payload is not a JSON
	// array of attribute objects.
	ErrStatusFormat = errors.New("sengled: invalid status payload")

	// ErrUnsupported is returned when a command targets a capability the
	// device does not have.
	ErrUnsupported = errors.New("sengled: capability not supported")

	// ErrUnknownDevice is returned when a command targets a MAC the
	// bridge has not discovered.
	ErrUnknownDevice = errors.New("sengled: unknown device")
)
