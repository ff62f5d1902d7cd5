package entity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// HistoryRepository defines the interface for the append-only state history.
type HistoryRepository interface {
	// AppendState appends a new state row and returns its row ID.
	// History is append-only: rows are never updated or deleted.
	AppendState(ctx context.Context, state *State) (int64, error)

	// AppendAttributes appends the attribute rows for a state row.
	// Duplicate keys are kept as-is; the history records what the export said.
	AppendAttributes(ctx context.Context, stateID int64, attrs []Attribute) error

	// GetCurrentState retrieves the most recently appended state for an
	// entity, with its attributes loaded.
	// Returns ErrStateNotFound if the entity has no recorded states.
	GetCurrentState(ctx context.Context, entityID string) (*State, error)

	// GetHistory retrieves state rows for an entity, newest first.
	// Attributes are not loaded; use GetCurrentState or GetAttributes for those.
	GetHistory(ctx context.Context, entityID string, filter HistoryFilter) ([]State, error)

	// GetAttributes retrieves the attribute rows for a state row.
	GetAttributes(ctx context.Context, stateID int64) ([]Attribute, error)

	// CountStates returns the number of history rows for an entity.
	CountStates(ctx context.Context, entityID string) (int, error)
}

// SQLiteHistoryRepository implements HistoryRepository using SQLite.
type SQLiteHistoryRepository struct {
	db *sql.DB
}

// NewSQLiteHistoryRepository creates a new SQLite-backed history repository.
func NewSQLiteHistoryRepository(db *sql.DB) *SQLiteHistoryRepository {
	return &SQLiteHistoryRepository{db: db}
}

// AppendState appends a new state row and returns its row ID.
func (r *SQLiteHistoryRepository) AppendState(ctx context.Context, state *State) (int64, error) {
	if state.EntityID == "" || state.SnapshotID == "" {
		return 0, ErrMissingNaturalKey
	}

	query := `
		INSERT INTO entity_states (entity_id, snapshot_id, state, state_class, last_changed, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		state.EntityID,
		state.SnapshotID,
		state.StateValue,
		state.StateClass,
		formatTimePtr(state.LastChanged),
		formatTimePtr(state.LastUpdated),
	)
	if err != nil {
		return 0, fmt.Errorf("appending state: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading state row id: %w", err)
	}
	return id, nil
}

// AppendAttributes appends the attribute rows for a state row.
func (r *SQLiteHistoryRepository) AppendAttributes(ctx context.Context, stateID int64, attrs []Attribute) error {
	if len(attrs) == 0 {
		return nil
	}

	query := `
		INSERT INTO entity_attributes (entity_state_id, attr_key, attr_value, attr_type)
		VALUES (?, ?, ?, ?)`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing attribute insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, attr := range attrs {
		if _, err := stmt.ExecContext(ctx, stateID, attr.Key, attr.Value, attr.Type); err != nil {
			return fmt.Errorf("appending attribute %q: %w", attr.Key, err)
		}
	}
	return nil
}

// GetCurrentState retrieves the most recently appended state for an entity.
func (r *SQLiteHistoryRepository) GetCurrentState(ctx context.Context, entityID string) (*State, error) {
	query := selectState + `
		WHERE entity_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	row := r.db.QueryRowContext(ctx, query, entityID)
	state, err := scanState(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("querying current state: %w", err)
	}

	attrs, err := r.GetAttributes(ctx, state.ID)
	if err != nil {
		return nil, err
	}
	state.Attributes = attrs

	return state, nil
}

// GetHistory retrieves state rows for an entity, newest first.
func (r *SQLiteHistoryRepository) GetHistory(ctx context.Context, entityID string, filter HistoryFilter) ([]State, error) {
	query := selectState + `
		WHERE entity_id = ?`
	args := []any{entityID}

	if filter.Since != nil {
		query += `
		AND created_at >= ?`
		args = append(args, filter.Since.UTC().Format(time.RFC3339))
	}
	if filter.Until != nil {
		query += `
		AND created_at <= ?`
		args = append(args, filter.Until.UTC().Format(time.RFC3339))
	}

	query += `
		ORDER BY created_at DESC, id DESC`

	if filter.Limit > 0 {
		query += `
		LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying state history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var states []State
	for rows.Next() {
		state, err := scanState(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning state: %w", err)
		}
		states = append(states, *state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating state history: %w", err)
	}
	return states, nil
}

// GetAttributes retrieves the attribute rows for a state row.
func (r *SQLiteHistoryRepository) GetAttributes(ctx context.Context, stateID int64) ([]Attribute, error) {
	query := `
		SELECT id, entity_state_id, attr_key, attr_value, attr_type
		FROM entity_attributes
		WHERE entity_state_id = ?
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, stateID)
	if err != nil {
		return nil, fmt.Errorf("querying attributes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var attrs []Attribute
	for rows.Next() {
		var (
			attr  Attribute
			value sql.NullString
		)
		if err := rows.Scan(&attr.ID, &attr.EntityStateID, &attr.Key, &value, &attr.Type); err != nil {
			return nil, fmt.Errorf("scanning attribute: %w", err)
		}
		if value.Valid {
			attr.Value = &value.String
		}
		attrs = append(attrs, attr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attributes: %w", err)
	}
	return attrs, nil
}

// CountStates returns the number of history rows for an entity.
func (r *SQLiteHistoryRepository) CountStates(ctx context.Context, entityID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entity_states WHERE entity_id = ?`, entityID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting states: %w", err)
	}
	return count, nil
}

const selectState = `
		SELECT id, entity_id, snapshot_id, state, state_class, last_changed, last_updated, created_at
		FROM entity_states`

func scanState(s scanner) (*State, error) {
	var (
		state       State
		stateValue  sql.NullString
		stateClass  sql.NullString
		lastChanged sql.NullString
		lastUpdated sql.NullString
		createdAt   string
	)

	err := s.Scan(&state.ID, &state.EntityID, &state.SnapshotID, &stateValue, &stateClass,
		&lastChanged, &lastUpdated, &createdAt)
	if err != nil {
		return nil, err
	}

	if stateValue.Valid {
		state.StateValue = &stateValue.String
	}
	if stateClass.Valid {
		state.StateClass = &stateClass.String
	}

	if state.LastChanged, err = parseTimeNull(lastChanged); err != nil {
		return nil, fmt.Errorf("parsing last_changed: %w", err)
	}
	if state.LastUpdated, err = parseTimeNull(lastUpdated); err != nil {
		return nil, fmt.Errorf("parsing last_updated: %w", err)
	}
	if state.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &state, nil
}

// formatTimePtr formats an optional time as RFC 3339 UTC for storage.
func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format(time.RFC3339)
	return &formatted
}

// parseTimeNull parses an optional RFC 3339 column value.
func parseTimeNull(v sql.NullString) (*time.Time, error) {
	if !v.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
