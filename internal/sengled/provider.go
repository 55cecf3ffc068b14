package sengled

import (
	"context"

	"github.com/nerrad567/sengled-bridge/internal/device"
)

// DeviceProvider supplies device discovery and polled attribute reads.
//
// Two implementations exist: the local add-on API (addon.Client) and the
// Sengled cloud (cloud.Client). The bridge treats them identically; which
// one is wired is a configuration choice made at startup.
type DeviceProvider interface {
	// ListDevices returns every device the provider knows about.
	ListDevices(ctx context.Context) ([]device.Snapshot, error)

	// GetDevice returns the current attributes of one device.
	GetDevice(ctx context.Context, mac string) (device.Snapshot, error)
}
