package device

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for device persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByMAC retrieves a device by MAC address.
	// Returns ErrDeviceNotFound if the device does not exist.
	GetByMAC(ctx context.Context, mac string) (*Device, error)

	// List retrieves all devices ordered by name.
	List(ctx context.Context) ([]Device, error)

	// Upsert inserts a device, or updates it if the MAC already exists.
	// CreatedAt is preserved on update.
	Upsert(ctx context.Context, device *Device) error

	// Delete removes a device by MAC.
	// Returns ErrDeviceNotFound if the device does not exist.
	Delete(ctx context.Context, mac string) error

	// UpdateState replaces only the state of a device.
	// This is optimised for frequent state changes from the MQTT stream.
	UpdateState(ctx context.Context, mac string, state State) error

	// UpdateOnline updates only the reachability flag of a device.
	UpdateOnline(ctx context.Context, mac string, online bool) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const deviceColumns = `mac, name, model, class,
	supports_brightness, supports_color_temp, supports_color,
	state, online, firmware_version, created_at, updated_at`

// GetByMAC retrieves a device by MAC address.
func (r *SQLiteRepository) GetByMAC(ctx context.Context, mac string) (*Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE mac = ?`

	row := r.db.QueryRowContext(ctx, query, mac)
	dev, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device by mac: %w", err)
	}
	return dev, nil
}

// List retrieves all devices ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices ORDER BY name, mac`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		dev, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, *dev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}

	return devices, nil
}

// Upsert inserts or updates a device keyed by MAC.
func (r *SQLiteRepository) Upsert(ctx context.Context, device *Device) error {
	stateJSON, err := json.Marshal(device.State)
	if err != nil {
		return fmt.Errorf("marshalling state: %w", err)
	}

	// Set timestamps if not set
	now := time.Now().UTC()
	if device.CreatedAt.IsZero() {
		device.CreatedAt = now
	}
	device.UpdatedAt = now

	query := `
		INSERT INTO devices (
			mac, name, model, class,
			supports_brightness, supports_color_temp, supports_color,
			state, online, firmware_version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(mac) DO UPDATE SET
			name = excluded.name,
			model = excluded.model,
			class = excluded.class,
			supports_brightness = excluded.supports_brightness,
			supports_color_temp = excluded.supports_color_temp,
			supports_color = excluded.supports_color,
			state = excluded.state,
			online = excluded.online,
			firmware_version = excluded.firmware_version,
			updated_at = excluded.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		device.MAC,
		device.Name,
		device.Model,
		string(device.Class),
		boolToInt(device.SupportsBrightness),
		boolToInt(device.SupportsColorTemp),
		boolToInt(device.SupportsColor),
		string(stateJSON),
		boolToInt(device.Online),
		device.FirmwareVersion,
		device.CreatedAt.Format(time.RFC3339),
		device.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting device: %w", err)
	}

	return nil
}

// Delete removes a device by MAC.
func (r *SQLiteRepository) Delete(ctx context.Context, mac string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM devices WHERE mac = ?", mac)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

// UpdateState replaces the stored state of a device.
//
// Sengled state is a small fixed struct rather than an open key set, so a
// full replace is correct; partial merging happens in memory before the
// registry calls this.
func (r *SQLiteRepository) UpdateState(ctx context.Context, mac string, state State) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshalling state: %w", err)
	}

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		"UPDATE devices SET state = ?, updated_at = ? WHERE mac = ?",
		string(stateJSON),
		now.Format(time.RFC3339),
		mac,
	)
	if err != nil {
		return fmt.Errorf("updating device state: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

// UpdateOnline updates the reachability flag of a device.
func (r *SQLiteRepository) UpdateOnline(ctx context.Context, mac string, online bool) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		"UPDATE devices SET online = ?, updated_at = ? WHERE mac = ?",
		boolToInt(online),
		now.Format(time.RFC3339),
		mac,
	)
	if err != nil {
		return fmt.Errorf("updating device online: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDevice scans a row or rows result into a Device.
func scanDevice(scanner rowScanner) (*Device, error) {
	var d Device
	var class string
	var supportsBrightness, supportsColorTemp, supportsColor, online int
	var stateJSON string
	var createdAt, updatedAt string

	err := scanner.Scan(
		&d.MAC,
		&d.Name,
		&d.Model,
		&class,
		&supportsBrightness,
		&supportsColorTemp,
		&supportsColor,
		&stateJSON,
		&online,
		&d.FirmwareVersion,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Class = Class(class)
	d.SupportsBrightness = supportsBrightness != 0
	d.SupportsColorTemp = supportsColorTemp != 0
	d.SupportsColor = supportsColor != 0
	d.Online = online != 0

	if err := json.Unmarshal([]byte(stateJSON), &d.State); err != nil {
		return nil, fmt.Errorf("unmarshalling state: %w", err)
	}

	var parseErr error
	d.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAt)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	d.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAt)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}

	return &d, nil
}

// boolToInt converts a boolean to 0/1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
