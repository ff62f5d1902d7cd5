package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PersonRepository defines person projection persistence.
type PersonRepository interface {
	// UpsertPerson inserts a person or overwrites the existing row with the
	// same entity_id. The registry id is a plain column: exports gain and
	// lose it across controller upgrades, so it never keys the row.
	// Returns ErrMissingNaturalKey if EntityID is empty.
	UpsertPerson(ctx context.Context, p *Person) error

	// GetPerson retrieves a person by its entity id or registry id.
	// Returns ErrPersonNotFound if the person does not exist.
	GetPerson(ctx context.Context, id string) (*Person, error)

	// ListPersons retrieves all persons ordered by name.
	ListPersons(ctx context.Context) ([]Person, error)
}

// UpsertPerson inserts or overwrites a person by natural key.
func (r *SQLiteRepository) UpsertPerson(ctx context.Context, p *Person) error {
	if p.EntityID == "" {
		return ErrMissingNaturalKey
	}

	trackersJSON, err := marshalStrings(p.DeviceTrackers)
	if err != nil {
		return fmt.Errorf("marshalling device_trackers: %w", err)
	}

	query := `
		INSERT INTO persons (
			entity_id, person_id, name, user_id, device_trackers,
			latitude, longitude, gps_accuracy
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			person_id = excluded.person_id,
			name = excluded.name,
			user_id = excluded.user_id,
			device_trackers = excluded.device_trackers,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			gps_accuracy = excluded.gps_accuracy,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`

	_, err = r.db.ExecContext(ctx, query,
		p.EntityID,
		p.PersonID,
		p.Name,
		p.UserID,
		trackersJSON,
		p.Latitude,
		p.Longitude,
		p.GPSAccuracy,
	)
	if err != nil {
		return fmt.Errorf("upserting person: %w", err)
	}
	return nil
}

// GetPerson retrieves a person by its entity id or registry id.
func (r *SQLiteRepository) GetPerson(ctx context.Context, id string) (*Person, error) {
	query := selectPerson + `
		WHERE entity_id = ? OR person_id = ?`

	row := r.db.QueryRowContext(ctx, query, id, id)
	p, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("querying person by id: %w", err)
	}
	return p, nil
}

// ListPersons retrieves all persons ordered by name.
func (r *SQLiteRepository) ListPersons(ctx context.Context) ([]Person, error) {
	query := selectPerson + `
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying persons: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var persons []Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning person: %w", err)
		}
		persons = append(persons, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating persons: %w", err)
	}
	return persons, nil
}

const selectPerson = `
		SELECT person_id, entity_id, name, user_id, device_trackers,
			latitude, longitude, gps_accuracy, created_at, updated_at
		FROM persons`

func scanPerson(s scanner) (*Person, error) {
	var (
		p            Person
		userID       sql.NullString
		trackersJSON string
		latitude     sql.NullFloat64
		longitude    sql.NullFloat64
		gpsAccuracy  sql.NullFloat64
		createdAt    string
		updatedAt    string
	)

	err := s.Scan(&p.PersonID, &p.EntityID, &p.Name, &userID, &trackersJSON,
		&latitude, &longitude, &gpsAccuracy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(trackersJSON), &p.DeviceTrackers); err != nil {
		return nil, fmt.Errorf("unmarshalling device_trackers: %w", err)
	}

	p.UserID = nullString(userID)
	p.Latitude = nullFloat(latitude)
	p.Longitude = nullFloat(longitude)
	p.GPSAccuracy = nullFloat(gpsAccuracy)

	if p.CreatedAt, p.UpdatedAt, err = parseTimestamps(createdAt, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing timestamps: %w", err)
	}

	return &p, nil
}
