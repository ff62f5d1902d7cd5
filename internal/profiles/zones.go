package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ZoneRepository defines zone projection persistence.
type ZoneRepository interface {
	// UpsertZone inserts a zone or overwrites the existing row with the
	// same entity_id. Returns ErrMissingNaturalKey if EntityID is empty.
	UpsertZone(ctx context.Context, z *Zone) error

	// GetZone retrieves a zone by its entity ID.
	// Returns ErrZoneNotFound if the zone does not exist.
	GetZone(ctx context.Context, entityID string) (*Zone, error)

	// ListZones retrieves all zones ordered by name.
	ListZones(ctx context.Context) ([]Zone, error)
}

// UpsertZone inserts or overwrites a zone by natural key.
func (r *SQLiteRepository) UpsertZone(ctx context.Context, z *Zone) error {
	if z.EntityID == "" {
		return ErrMissingNaturalKey
	}

	personsJSON, err := marshalStrings(z.Persons)
	if err != nil {
		return fmt.Errorf("marshalling persons: %w", err)
	}

	query := `
		INSERT INTO zones (
			entity_id, name, latitude, longitude, radius, passive, persons, icon
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			name = excluded.name,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			radius = excluded.radius,
			passive = excluded.passive,
			persons = excluded.persons,
			icon = excluded.icon,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`

	_, err = r.db.ExecContext(ctx, query,
		z.EntityID,
		z.Name,
		z.Latitude,
		z.Longitude,
		z.Radius,
		boolToInt(z.Passive),
		personsJSON,
		z.Icon,
	)
	if err != nil {
		return fmt.Errorf("upserting zone: %w", err)
	}
	return nil
}

// GetZone retrieves a zone by its entity ID.
func (r *SQLiteRepository) GetZone(ctx context.Context, entityID string) (*Zone, error) {
	query := selectZone + `
		WHERE entity_id = ?`

	row := r.db.QueryRowContext(ctx, query, entityID)
	z, err := scanZone(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrZoneNotFound
		}
		return nil, fmt.Errorf("querying zone by id: %w", err)
	}
	return z, nil
}

// ListZones retrieves all zones ordered by name.
func (r *SQLiteRepository) ListZones(ctx context.Context) ([]Zone, error) {
	query := selectZone + `
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying zones: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var zones []Zone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning zone: %w", err)
		}
		zones = append(zones, *z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating zones: %w", err)
	}
	return zones, nil
}

const selectZone = `
		SELECT entity_id, name, latitude, longitude, radius, passive, persons, icon,
			created_at, updated_at
		FROM zones`

func scanZone(s scanner) (*Zone, error) {
	var (
		z           Zone
		latitude    sql.NullFloat64
		longitude   sql.NullFloat64
		radius      sql.NullFloat64
		passive     int
		personsJSON string
		icon        sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := s.Scan(&z.EntityID, &z.Name, &latitude, &longitude, &radius, &passive,
		&personsJSON, &icon, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(personsJSON), &z.Persons); err != nil {
		return nil, fmt.Errorf("unmarshalling persons: %w", err)
	}

	z.Latitude = nullFloat(latitude)
	z.Longitude = nullFloat(longitude)
	z.Radius = nullFloat(radius)
	z.Passive = passive != 0
	z.Icon = nullString(icon)

	if z.CreatedAt, z.UpdatedAt, err = parseTimestamps(createdAt, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing timestamps: %w", err)
	}

	return &z, nil
}

// boolToInt converts a bool for STRICT INTEGER columns.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
