package device

import (
	"context"
	"time"
)

// State history source values.
const (
	StateHistorySourceMQTT    = "mqtt"
	StateHistorySourcePoll    = "poll"
	StateHistorySourceCommand = "command"
)

// StateHistoryEntry represents a single device state change record.
//
// Each entry stores a full snapshot of the device state at the time the
// change was observed. This provides a local audit trail even when the
// time-series database is unavailable.
type StateHistoryEntry struct {
	// ID is the auto-incremented primary key for the history row.
	ID int64 `json:"id"`

	// MAC is the device MAC address.
	MAC string `json:"mac"`

	// State is the snapshot of the device state.
	State State `json:"state"`

	// Source identifies how the state change was recorded (mqtt, poll, command).
	Source string `json:"source"`

	// CreatedAt is the timestamp of the state change (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// StateHistoryRepository stores and retrieves device state change history.
//
// Implementations must be thread-safe and use UTC timestamps.
type StateHistoryRepository interface {
	// RecordStateChange records a device state change.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - mac: Device MAC address
	//   - state: State snapshot to persist
	//   - source: Origin of the change (mqtt, poll, command)
	//
	// Returns:
	//   - error: nil on success, otherwise the underlying persistence error
	RecordStateChange(ctx context.Context, mac string, state State, source string) error

	// GetHistory returns recent state change history for the device.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - mac: Device MAC address
	//   - limit: Maximum entries to return (implementation may clamp bounds)
	//
	// Returns:
	//   - []StateHistoryEntry: Ordered newest-first history entries (may be empty)
	//   - error: nil on success, otherwise the underlying query error
	GetHistory(ctx context.Context, mac string, limit int) ([]StateHistoryEntry, error)
}
