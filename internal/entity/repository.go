package entity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for entity registry persistence.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// Upsert inserts an entity or overwrites the existing row with the
	// same entity_id. Returns ErrMissingNaturalKey if EntityID is empty.
	Upsert(ctx context.Context, e *Entity) error

	// GetByID retrieves an entity by its natural key.
	// Returns ErrEntityNotFound if the entity does not exist.
	GetByID(ctx context.Context, entityID string) (*Entity, error)

	// List retrieves all entities ordered by entity_id.
	List(ctx context.Context) ([]Entity, error)

	// ListByType retrieves entities with a given export grouping key.
	ListByType(ctx context.Context, entityType string) ([]Entity, error)

	// ListByDomain retrieves entities with a given domain prefix.
	ListByDomain(ctx context.Context, domain string) ([]Entity, error)

	// Search retrieves entities whose entity_id or friendly_name contains
	// the query string (case-insensitive).
	Search(ctx context.Context, query string) ([]Entity, error)
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

// Upsert inserts or overwrites an entity by natural key.
func (r *SQLiteRepository) Upsert(ctx context.Context, e *Entity) error {
	if e.EntityID == "" {
		return ErrMissingNaturalKey
	}

	query := `
		INSERT INTO entities (
			entity_id, entity_type, domain, object_id, friendly_name, device_id, area_id
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			entity_type = excluded.entity_type,
			domain = excluded.domain,
			object_id = excluded.object_id,
			friendly_name = excluded.friendly_name,
			device_id = excluded.device_id,
			area_id = excluded.area_id,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`

	_, err := r.db.ExecContext(ctx, query,
		e.EntityID,
		e.EntityType,
		e.Domain,
		e.ObjectID,
		e.FriendlyName,
		e.DeviceID,
		e.AreaID,
	)
	if err != nil {
		return fmt.Errorf("upserting entity: %w", err)
	}
	return nil
}

// GetByID retrieves an entity by its natural key.
func (r *SQLiteRepository) GetByID(ctx context.Context, entityID string) (*Entity, error) {
	query := selectEntity + `
		WHERE entity_id = ?`

	row := r.db.QueryRowContext(ctx, query, entityID)
	e, err := scanEntity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntityNotFound
		}
		return nil, fmt.Errorf("querying entity by id: %w", err)
	}
	return e, nil
}

// List retrieves all entities ordered by entity_id.
func (r *SQLiteRepository) List(ctx context.Context) ([]Entity, error) {
	query := selectEntity + `
		ORDER BY entity_id`

	return r.queryEntities(ctx, query)
}

// ListByType retrieves entities with a given export grouping key.
func (r *SQLiteRepository) ListByType(ctx context.Context, entityType string) ([]Entity, error) {
	query := selectEntity + `
		WHERE entity_type = ?
		ORDER BY entity_id`

	return r.queryEntities(ctx, query, entityType)
}

// ListByDomain retrieves entities with a given domain prefix.
func (r *SQLiteRepository) ListByDomain(ctx context.Context, domain string) ([]Entity, error) {
	query := selectEntity + `
		WHERE domain = ?
		ORDER BY entity_id`

	return r.queryEntities(ctx, query, domain)
}

// Search retrieves entities matching the query string on entity_id or
// friendly_name. SQLite LIKE is case-insensitive for ASCII by default.
func (r *SQLiteRepository) Search(ctx context.Context, query string) ([]Entity, error) {
	pattern := "%" + escapeLike(query) + "%"
	sqlQuery := selectEntity + `
		WHERE entity_id LIKE ? ESCAPE '\' OR friendly_name LIKE ? ESCAPE '\'
		ORDER BY entity_id`

	return r.queryEntities(ctx, sqlQuery, pattern, pattern)
}

const selectEntity = `
		SELECT entity_id, entity_type, domain, object_id, friendly_name,
			device_id, area_id, created_at, updated_at
		FROM entities`

// queryEntities executes a query returning entity rows.
func (r *SQLiteRepository) queryEntities(ctx context.Context, query string, args ...any) ([]Entity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entities []Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		entities = append(entities, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}
	return entities, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(s scanner) (*Entity, error) {
	var (
		e            Entity
		friendlyName sql.NullString
		deviceID     sql.NullString
		areaID       sql.NullString
		createdAt    string
		updatedAt    string
	)

	err := s.Scan(&e.EntityID, &e.EntityType, &e.Domain, &e.ObjectID, &friendlyName,
		&deviceID, &areaID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if friendlyName.Valid {
		e.FriendlyName = &friendlyName.String
	}
	if deviceID.Valid {
		e.DeviceID = &deviceID.String
	}
	if areaID.Valid {
		e.AreaID = &areaID.String
	}

	if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if e.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &e, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
