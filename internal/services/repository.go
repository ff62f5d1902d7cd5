package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for service catalogue persistence.
type Repository interface {
	// Upsert inserts a service or overwrites the existing row with the
	// same full name. Returns ErrMissingNaturalKey if FullName is empty.
	Upsert(ctx context.Context, svc *Service) error

	// GetByName retrieves a service by its full "domain.service" name.
	// Returns ErrServiceNotFound if the service does not exist.
	GetByName(ctx context.Context, fullName string) (*Service, error)

	// List retrieves all services ordered by full name.
	List(ctx context.Context) ([]Service, error)

	// ListByDomain retrieves all services in a domain.
	ListByDomain(ctx context.Context, domain string) ([]Service, error)
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

// Upsert inserts or overwrites a service by natural key.
func (r *SQLiteRepository) Upsert(ctx context.Context, svc *Service) error {
	if svc.FullName == "" {
		return ErrMissingNaturalKey
	}

	fields := svc.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshalling fields: %w", err)
	}

	query := `
		INSERT INTO services (
			full_name, domain, service_name, description, fields, target, response_optional
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(full_name) DO UPDATE SET
			domain = excluded.domain,
			service_name = excluded.service_name,
			description = excluded.description,
			fields = excluded.fields,
			target = excluded.target,
			response_optional = excluded.response_optional,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`

	responseOptional := 0
	if svc.ResponseOptional {
		responseOptional = 1
	}

	_, err = r.db.ExecContext(ctx, query,
		svc.FullName,
		svc.Domain,
		svc.ServiceName,
		svc.Description,
		string(fieldsJSON),
		svc.Target,
		responseOptional,
	)
	if err != nil {
		return fmt.Errorf("upserting service: %w", err)
	}
	return nil
}

// GetByName retrieves a service by its full "domain.service" name.
func (r *SQLiteRepository) GetByName(ctx context.Context, fullName string) (*Service, error) {
	query := selectService + `
		WHERE full_name = ?`

	row := r.db.QueryRowContext(ctx, query, fullName)
	svc, err := scanService(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("querying service by name: %w", err)
	}
	return svc, nil
}

// List retrieves all services ordered by full name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Service, error) {
	query := selectService + `
		ORDER BY full_name`

	return r.queryServices(ctx, query)
}

// ListByDomain retrieves all services in a domain.
func (r *SQLiteRepository) ListByDomain(ctx context.Context, domain string) ([]Service, error) {
	query := selectService + `
		WHERE domain = ?
		ORDER BY full_name`

	return r.queryServices(ctx, query, domain)
}

// queryServices executes a query returning service rows.
func (r *SQLiteRepository) queryServices(ctx context.Context, query string, args ...any) ([]Service, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying services: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var services []Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning service: %w", err)
		}
		services = append(services, *svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating services: %w", err)
	}
	return services, nil
}

const selectService = `
		SELECT full_name, domain, service_name, description, fields, target, response_optional,
			created_at, updated_at
		FROM services`

// scanner abstracts sql.Row and sql.Rows for shared scanning logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanService(s scanner) (*Service, error) {
	var (
		svc              Service
		description      sql.NullString
		fieldsJSON       string
		target           sql.NullString
		responseOptional int
		createdAt        string
		updatedAt        string
	)

	err := s.Scan(&svc.FullName, &svc.Domain, &svc.ServiceName, &description,
		&fieldsJSON, &target, &responseOptional, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(fieldsJSON), &svc.Fields); err != nil {
		return nil, fmt.Errorf("unmarshalling fields: %w", err)
	}

	if description.Valid {
		svc.Description = &description.String
	}
	if target.Valid {
		svc.Target = &target.String
	}
	svc.ResponseOptional = responseOptional != 0

	if svc.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if svc.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &svc, nil
}
