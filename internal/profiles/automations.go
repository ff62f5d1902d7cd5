package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DefaultAutomationMode is assumed when the export omits the run mode.
const DefaultAutomationMode = "single"

// AutomationRepository defines automation projection persistence.
type AutomationRepository interface {
	// UpsertAutomation inserts an automation or overwrites the existing row
	// with the same entity_id. The registry id is a plain column that the
	// upsert may rewrite when the export starts or stops carrying it.
	// Returns ErrMissingNaturalKey if EntityID is empty.
	UpsertAutomation(ctx context.Context, a *Automation) error

	// GetAutomation retrieves an automation by its entity id or registry id.
	// Returns ErrAutomationNotFound if the automation does not exist.
	GetAutomation(ctx context.Context, id string) (*Automation, error)

	// ListAutomations retrieves all automations ordered by alias.
	ListAutomations(ctx context.Context) ([]Automation, error)
}

// UpsertAutomation inserts or overwrites an automation by natural key.
func (r *SQLiteRepository) UpsertAutomation(ctx context.Context, a *Automation) error {
	if a.EntityID == "" {
		return ErrMissingNaturalKey
	}

	mode := a.Mode
	if mode == "" {
		mode = DefaultAutomationMode
	}

	query := `
		INSERT INTO automations (
			entity_id, automation_id, alias, description, mode, current_runs, max_runs
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			automation_id = excluded.automation_id,
			alias = excluded.alias,
			description = excluded.description,
			mode = excluded.mode,
			current_runs = excluded.current_runs,
			max_runs = excluded.max_runs,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`

	_, err := r.db.ExecContext(ctx, query,
		a.EntityID,
		a.AutomationID,
		a.Alias,
		a.Description,
		mode,
		a.CurrentRuns,
		a.MaxRuns,
	)
	if err != nil {
		return fmt.Errorf("upserting automation: %w", err)
	}
	return nil
}

// GetAutomation retrieves an automation by its entity id or registry id.
func (r *SQLiteRepository) GetAutomation(ctx context.Context, id string) (*Automation, error) {
	query := selectAutomation + `
		WHERE entity_id = ? OR automation_id = ?`

	row := r.db.QueryRowContext(ctx, query, id, id)
	a, err := scanAutomation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAutomationNotFound
		}
		return nil, fmt.Errorf("querying automation by id: %w", err)
	}
	return a, nil
}

// ListAutomations retrieves all automations ordered by alias.
func (r *SQLiteRepository) ListAutomations(ctx context.Context) ([]Automation, error) {
	query := selectAutomation + `
		ORDER BY alias`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying automations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var automations []Automation
	for rows.Next() {
		a, err := scanAutomation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning automation: %w", err)
		}
		automations = append(automations, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating automations: %w", err)
	}
	return automations, nil
}

const selectAutomation = `
		SELECT automation_id, entity_id, alias, description, mode, current_runs, max_runs,
			created_at, updated_at
		FROM automations`

func scanAutomation(s scanner) (*Automation, error) {
	var (
		a           Automation
		description sql.NullString
		maxRuns     sql.NullInt64
		createdAt   string
		updatedAt   string
	)

	err := s.Scan(&a.AutomationID, &a.EntityID, &a.Alias, &description, &a.Mode,
		&a.CurrentRuns, &maxRuns, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	a.Description = nullString(description)
	if maxRuns.Valid {
		runs := int(maxRuns.Int64)
		a.MaxRuns = &runs
	}

	if a.CreatedAt, a.UpdatedAt, err = parseTimestamps(createdAt, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing timestamps: %w", err)
	}

	return &a, nil
}
