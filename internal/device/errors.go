package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a device MAC does not exist.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrInvalidMAC is returned when a MAC address is empty or malformed.
	ErrInvalidMAC = errors.New("device: invalid mac address")

	// ErrInvalidClass is returned when a device class is not recognised.
	ErrInvalidClass = errors.New("device: invalid class")

	// ErrInvalidName is returned when a device name is empty.
	ErrInvalidName = errors.New("device: invalid name")
)
