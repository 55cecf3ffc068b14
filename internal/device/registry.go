package device

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry provides device management with caching and thread safety.
// It wraps a Repository and adds an in-memory cache for fast lookups.
//
// The cache is populated on startup via RefreshCache() and kept in sync
// by the mutating operations. Devices are keyed by MAC address.
//
// All public methods are thread-safe.
type Registry struct {
	repo    Repository
	cache   map[string]*Device // Cached devices by MAC
	cacheMu sync.RWMutex       // Protects cache
	logger  Logger
}

// NewRegistry creates a new device registry.
// The repository is used for persistence; the registry adds caching.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		cache:  make(map[string]*Device),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// RefreshCache reloads all devices from the repository into the cache.
// This should be called on application startup.
func (r *Registry) RefreshCache(ctx context.Context) error {
	devices, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading devices: %w", err)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	// Clear and rebuild cache with deep copies
	r.cache = make(map[string]*Device, len(devices))
	for i := range devices {
		d := devices[i]
		r.cache[d.MAC] = d.DeepCopy()
	}

	r.logger.Info("device cache refreshed", "count", len(devices))
	return nil
}

// GetDevice retrieves a device by MAC address.
// Returns ErrDeviceNotFound if the device does not exist.
// The returned device is a deep copy; callers can safely modify it.
func (r *Registry) GetDevice(ctx context.Context, mac string) (*Device, error) {
	// Try cache first
	r.cacheMu.RLock()
	cached, ok := r.cache[mac]
	r.cacheMu.RUnlock()

	if ok {
		// Return a deep copy to prevent external mutation of cache
		return cached.DeepCopy(), nil
	}

	// Fall back to repository (might be a new device not yet cached)
	dev, err := r.repo.GetByMAC(ctx, mac)
	if err != nil {
		return nil, err
	}

	// Cache for future lookups (store a deep copy)
	r.cacheMu.Lock()
	r.cache[mac] = dev.DeepCopy()
	r.cacheMu.Unlock()

	return dev, nil
}

// ListDevices retrieves all devices, sorted by name.
// The returned devices are deep copies; callers can safely modify them.
func (r *Registry) ListDevices(ctx context.Context) ([]Device, error) {
	r.cacheMu.RLock()

	// Return from cache if populated
	if len(r.cache) > 0 {
		devices := make([]Device, 0, len(r.cache))
		for _, d := range r.cache {
			// Deep copy to prevent external mutation of cache
			devices = append(devices, *d.DeepCopy())
		}
		r.cacheMu.RUnlock()

		sort.Slice(devices, func(i, j int) bool {
			if devices[i].Name != devices[j].Name {
				return devices[i].Name < devices[j].Name
			}
			return devices[i].MAC < devices[j].MAC
		})
		return devices, nil
	}
	r.cacheMu.RUnlock()

	// Fall back to repository
	return r.repo.List(ctx)
}

// GetDevicesByClass retrieves all devices of a specific class.
// The returned devices are deep copies; callers can safely modify them.
func (r *Registry) GetDevicesByClass(ctx context.Context, class Class) ([]Device, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	var devices []Device
	for _, d := range r.cache {
		if d.Class == class {
			// Deep copy to prevent external mutation of cache
			devices = append(devices, *d.DeepCopy())
		}
	}
	return devices, nil
}

// UpsertDevice creates or updates a device record.
// It validates the device and persists it, preserving CreatedAt on update.
func (r *Registry) UpsertDevice(ctx context.Context, dev *Device) error {
	if err := validateDevice(dev); err != nil {
		return err
	}

	// Persist
	if err := r.repo.Upsert(ctx, dev); err != nil {
		return err
	}

	// Update cache (store a deep copy to prevent external modification)
	r.cacheMu.Lock()
	r.cache[dev.MAC] = dev.DeepCopy()
	r.cacheMu.Unlock()

	r.logger.Info("device upserted", "mac", dev.MAC, "name", dev.Name)
	return nil
}

// ReplaceAll atomically replaces the device set with the given devices.
//
// Existing state for devices that survive the refresh is preserved: the
// caller is expected to have merged it already. All devices are persisted
// before the cache is swapped; if any write fails, the previous cache is
// retained unchanged and the error is returned.
func (r *Registry) ReplaceAll(ctx context.Context, devices []Device) error {
	for i := range devices {
		if err := validateDevice(&devices[i]); err != nil {
			return fmt.Errorf("device %s: %w", devices[i].MAC, err)
		}
	}

	// Persist first so a failed refresh never empties the cache
	for i := range devices {
		if err := r.repo.Upsert(ctx, &devices[i]); err != nil {
			return fmt.Errorf("persisting device %s: %w", devices[i].MAC, err)
		}
	}

	replacement := make(map[string]*Device, len(devices))
	for i := range devices {
		d := devices[i]
		replacement[d.MAC] = d.DeepCopy()
	}

	r.cacheMu.Lock()
	var removed []string
	for mac := range r.cache {
		if _, ok := replacement[mac]; !ok {
			removed = append(removed, mac)
		}
	}
	r.cache = replacement
	r.cacheMu.Unlock()

	// Vanished devices must also leave the repository, or they resurrect
	// from the database on the next cache refresh.
	for _, mac := range removed {
		if err := r.repo.Delete(ctx, mac); err != nil && !errors.Is(err, ErrDeviceNotFound) {
			r.logger.Error("deleting vanished device", "mac", mac, "error", err)
		}
	}

	r.logger.Info("device set replaced", "count", len(devices), "removed", len(removed))
	return nil
}

// DeleteDevice removes a device.
func (r *Registry) DeleteDevice(ctx context.Context, mac string) error {
	if err := r.repo.Delete(ctx, mac); err != nil {
		return err
	}

	// Update cache
	r.cacheMu.Lock()
	delete(r.cache, mac)
	r.cacheMu.Unlock()

	r.logger.Info("device deleted", "mac", mac)
	return nil
}

// SetDeviceState updates the state of a device.
// This is optimised for frequent updates from the MQTT status stream.
func (r *Registry) SetDeviceState(ctx context.Context, mac string, state State) error {
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now().UTC()
	}

	if err := r.repo.UpdateState(ctx, mac, state); err != nil {
		return err
	}

	// Update cache using deep copy to prevent race conditions
	r.cacheMu.Lock()
	if cached, ok := r.cache[mac]; ok {
		// Create a deep copy with updated state (atomic replacement)
		updated := cached.DeepCopy()
		updated.State = state.DeepCopy()
		r.cache[mac] = updated
	}
	r.cacheMu.Unlock()

	r.logger.Debug("device state updated", "mac", mac)
	return nil
}

// SetDeviceOnline updates the reachability flag of a device.
func (r *Registry) SetDeviceOnline(ctx context.Context, mac string, online bool) error {
	if err := r.repo.UpdateOnline(ctx, mac, online); err != nil {
		return err
	}

	// Update cache using deep copy to prevent race conditions
	r.cacheMu.Lock()
	if cached, ok := r.cache[mac]; ok {
		updated := cached.DeepCopy()
		updated.Online = online
		r.cache[mac] = updated
	}
	r.cacheMu.Unlock()

	r.logger.Debug("device online updated", "mac", mac, "online", online)
	return nil
}

// GetDeviceCount returns the number of cached devices.
func (r *Registry) GetDeviceCount() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.cache)
}

// Stats returns registry statistics for monitoring.
type Stats struct {
	TotalDevices int
	Online       int
	ByClass      map[Class]int
}

// GetStats returns current registry statistics.
func (r *Registry) GetStats() Stats {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	stats := Stats{
		TotalDevices: len(r.cache),
		ByClass:      make(map[Class]int),
	}

	for _, d := range r.cache {
		stats.ByClass[d.Class]++
		if d.Online {
			stats.Online++
		}
	}

	return stats
}

// validateDevice checks the fields the registry requires before persisting.
func validateDevice(d *Device) error {
	if d == nil {
		return ErrDeviceNotFound
	}
	if strings.TrimSpace(d.MAC) == "" {
		return ErrInvalidMAC
	}
	if strings.TrimSpace(d.Name) == "" {
		return ErrInvalidName
	}
	if !d.Class.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidClass, d.Class)
	}
	return nil
}
