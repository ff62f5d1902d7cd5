package inventory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for area and device persistence.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// UpsertArea inserts an area or overwrites the existing row with the
	// same area_id. Returns ErrMissingNaturalKey if AreaID is empty.
	UpsertArea(ctx context.Context, area *Area) error

	// GetArea retrieves an area by its natural key.
	// Returns ErrAreaNotFound if the area does not exist.
	GetArea(ctx context.Context, areaID string) (*Area, error)

	// ListAreas retrieves all areas ordered by name.
	ListAreas(ctx context.Context) ([]Area, error)

	// UpsertDevice inserts a device or overwrites the existing row with the
	// same device_id. Returns ErrMissingNaturalKey if DeviceID is empty.
	UpsertDevice(ctx context.Context, device *Device) error

	// GetDevice retrieves a device by its natural key.
	// Returns ErrDeviceNotFound if the device does not exist.
	GetDevice(ctx context.Context, deviceID string) (*Device, error)

	// ListDevices retrieves all devices ordered by name.
	ListDevices(ctx context.Context) ([]Device, error)

	// ListDevicesByArea retrieves all devices assigned to an area.
	ListDevicesByArea(ctx context.Context, areaID string) ([]Device, error)
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

// UpsertArea inserts or overwrites an area by natural key.
func (r *SQLiteRepository) UpsertArea(ctx context.Context, area *Area) error {
	if area.AreaID == "" {
		return ErrMissingNaturalKey
	}

	aliases := area.Aliases
	if aliases == nil {
		aliases = []string{}
	}
	aliasesJSON, err := json.Marshal(aliases)
	if err != nil {
		return fmt.Errorf("marshalling aliases: %w", err)
	}

	query := `
		INSERT INTO areas (area_id, name, aliases, floor, icon)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(area_id) DO UPDATE SET
			name = excluded.name,
			aliases = excluded.aliases,
			floor = excluded.floor,
			icon = excluded.icon,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`

	_, err = r.db.ExecContext(ctx, query,
		area.AreaID,
		area.Name,
		string(aliasesJSON),
		area.Floor,
		area.Icon,
	)
	if err != nil {
		return fmt.Errorf("upserting area: %w", err)
	}
	return nil
}

// GetArea retrieves an area by its natural key.
func (r *SQLiteRepository) GetArea(ctx context.Context, areaID string) (*Area, error) {
	query := `
		SELECT area_id, name, aliases, floor, icon, created_at, updated_at
		FROM areas
		WHERE area_id = ?`

	row := r.db.QueryRowContext(ctx, query, areaID)
	area, err := scanArea(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAreaNotFound
		}
		return nil, fmt.Errorf("querying area by id: %w", err)
	}
	return area, nil
}

// ListAreas retrieves all areas ordered by name.
func (r *SQLiteRepository) ListAreas(ctx context.Context) ([]Area, error) {
	query := `
		SELECT area_id, name, aliases, floor, icon, created_at, updated_at
		FROM areas
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying areas: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var areas []Area
	for rows.Next() {
		area, err := scanArea(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning area: %w", err)
		}
		areas = append(areas, *area)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating areas: %w", err)
	}
	return areas, nil
}

// UpsertDevice inserts or overwrites a device by natural key.
func (r *SQLiteRepository) UpsertDevice(ctx context.Context, device *Device) error {
	if device.DeviceID == "" {
		return ErrMissingNaturalKey
	}

	connectionsJSON, err := marshalList(device.Connections)
	if err != nil {
		return fmt.Errorf("marshalling connections: %w", err)
	}
	identifiersJSON, err := marshalList(device.Identifiers)
	if err != nil {
		return fmt.Errorf("marshalling identifiers: %w", err)
	}

	query := `
		INSERT INTO devices (
			device_id, name, manufacturer, model, sw_version,
			configuration_url, connections, identifiers, via_device_id, area_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			name = excluded.name,
			manufacturer = excluded.manufacturer,
			model = excluded.model,
			sw_version = excluded.sw_version,
			configuration_url = excluded.configuration_url,
			connections = excluded.connections,
			identifiers = excluded.identifiers,
			via_device_id = excluded.via_device_id,
			area_id = excluded.area_id,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`

	_, err = r.db.ExecContext(ctx, query,
		device.DeviceID,
		device.Name,
		device.Manufacturer,
		device.Model,
		device.SWVersion,
		device.ConfigurationURL,
		connectionsJSON,
		identifiersJSON,
		device.ViaDeviceID,
		device.AreaID,
	)
	if err != nil {
		return fmt.Errorf("upserting device: %w", err)
	}
	return nil
}

// GetDevice retrieves a device by its natural key.
func (r *SQLiteRepository) GetDevice(ctx context.Context, deviceID string) (*Device, error) {
	query := `
		SELECT device_id, name, manufacturer, model, sw_version,
			configuration_url, connections, identifiers, via_device_id, area_id,
			created_at, updated_at
		FROM devices
		WHERE device_id = ?`

	row := r.db.QueryRowContext(ctx, query, deviceID)
	device, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device by id: %w", err)
	}
	return device, nil
}

// ListDevices retrieves all devices ordered by name.
func (r *SQLiteRepository) ListDevices(ctx context.Context) ([]Device, error) {
	query := `
		SELECT device_id, name, manufacturer, model, sw_version,
			configuration_url, connections, identifiers, via_device_id, area_id,
			created_at, updated_at
		FROM devices
		ORDER BY name`

	return r.queryDevices(ctx, query)
}

// ListDevicesByArea retrieves all devices assigned to an area.
func (r *SQLiteRepository) ListDevicesByArea(ctx context.Context, areaID string) ([]Device, error) {
	query := `
		SELECT device_id, name, manufacturer, model, sw_version,
			configuration_url, connections, identifiers, via_device_id, area_id,
			created_at, updated_at
		FROM devices
		WHERE area_id = ?
		ORDER BY name`

	return r.queryDevices(ctx, query, areaID)
}

// queryDevices executes a query returning device rows.
func (r *SQLiteRepository) queryDevices(ctx context.Context, query string, args ...any) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var devices []Device
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, *device)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanArea(s scanner) (*Area, error) {
	var (
		area        Area
		aliasesJSON string
		floor       sql.NullString
		icon        sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := s.Scan(&area.AreaID, &area.Name, &aliasesJSON, &floor, &icon, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(aliasesJSON), &area.Aliases); err != nil {
		return nil, fmt.Errorf("unmarshalling aliases: %w", err)
	}
	if floor.Valid {
		area.Floor = &floor.String
	}
	if icon.Valid {
		area.Icon = &icon.String
	}

	if area.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if area.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &area, nil
}

func scanDevice(s scanner) (*Device, error) {
	var (
		device          Device
		manufacturer    sql.NullString
		model           sql.NullString
		swVersion       sql.NullString
		configURL       sql.NullString
		connectionsJSON string
		identifiersJSON string
		viaDeviceID     sql.NullString
		areaID          sql.NullString
		createdAt       string
		updatedAt       string
	)

	err := s.Scan(&device.DeviceID, &device.Name, &manufacturer, &model, &swVersion,
		&configURL, &connectionsJSON, &identifiersJSON, &viaDeviceID, &areaID,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(connectionsJSON), &device.Connections); err != nil {
		return nil, fmt.Errorf("unmarshalling connections: %w", err)
	}
	if err := json.Unmarshal([]byte(identifiersJSON), &device.Identifiers); err != nil {
		return nil, fmt.Errorf("unmarshalling identifiers: %w", err)
	}

	if manufacturer.Valid {
		device.Manufacturer = &manufacturer.String
	}
	if model.Valid {
		device.Model = &model.String
	}
	if swVersion.Valid {
		device.SWVersion = &swVersion.String
	}
	if configURL.Valid {
		device.ConfigurationURL = &configURL.String
	}
	if viaDeviceID.Valid {
		device.ViaDeviceID = &viaDeviceID.String
	}
	if areaID.Valid {
		device.AreaID = &areaID.String
	}

	if device.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if device.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &device, nil
}

// marshalList marshals a JSON list field, defaulting nil to an empty array.
func marshalList(list []any) (string, error) {
	if list == nil {
		return "[]", nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
