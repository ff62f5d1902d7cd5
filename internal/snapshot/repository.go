package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for snapshot persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// Begin creates a new snapshot in the processing state and returns it.
	// sourceTimestamp and haVersion come from the export header and may be nil.
	Begin(ctx context.Context, sourceTimestamp *time.Time, haVersion *string) (*Snapshot, error)

	// Complete marks a snapshot as completed.
	// Returns ErrSnapshotNotFound if the snapshot does not exist.
	Complete(ctx context.Context, id string) error

	// Fail marks a snapshot as failed and records the failure reason.
	// Returns ErrSnapshotNotFound if the snapshot does not exist.
	Fail(ctx context.Context, id string, errorLog string) error

	// GetByID retrieves a snapshot by its unique identifier.
	// Returns ErrSnapshotNotFound if the snapshot does not exist.
	GetByID(ctx context.Context, id string) (*Snapshot, error)

	// List retrieves snapshots newest-first. limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]Snapshot, error)
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

// Begin creates a new snapshot in the processing state.
func (r *SQLiteRepository) Begin(ctx context.Context, sourceTimestamp *time.Time, haVersion *string) (*Snapshot, error) {
	id := uuid.NewString()

	var sourceTS *string
	if sourceTimestamp != nil {
		formatted := sourceTimestamp.UTC().Format(time.RFC3339)
		sourceTS = &formatted
	}

	query := `
		INSERT INTO snapshots (id, source_timestamp, ha_version, status)
		VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, id, sourceTS, haVersion, string(StatusProcessing))
	if err != nil {
		return nil, fmt.Errorf("inserting snapshot: %w", err)
	}

	return r.GetByID(ctx, id)
}

// Complete marks a snapshot as completed.
func (r *SQLiteRepository) Complete(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, StatusCompleted, nil)
}

// Fail marks a snapshot as failed and records the failure reason.
func (r *SQLiteRepository) Fail(ctx context.Context, id string, errorLog string) error {
	return r.setStatus(ctx, id, StatusFailed, &errorLog)
}

// setStatus updates the status and error log of a snapshot.
func (r *SQLiteRepository) setStatus(ctx context.Context, id string, status Status, errorLog *string) error {
	query := `
		UPDATE snapshots
		SET status = ?, error_log = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, string(status), errorLog, id)
	if err != nil {
		return fmt.Errorf("updating snapshot status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrSnapshotNotFound
	}

	return nil
}

// GetByID retrieves a snapshot by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Snapshot, error) {
	query := `
		SELECT id, source_timestamp, ha_version, status, error_log, created_at, updated_at
		FROM snapshots
		WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	snap, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("querying snapshot by id: %w", err)
	}
	return snap, nil
}

// List retrieves snapshots newest-first.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]Snapshot, error) {
	query := `
		SELECT id, source_timestamp, ha_version, status, error_log, created_at, updated_at
		FROM snapshots
		ORDER BY created_at DESC, id DESC`

	args := []any{}
	if limit > 0 {
		query += `
		LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshots []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		snapshots = append(snapshots, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}

	return snapshots, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning logic.
type scanner interface {
	Scan(dest ...any) error
}

// scanSnapshot reads one snapshot row.
func scanSnapshot(s scanner) (*Snapshot, error) {
	var (
		snap      Snapshot
		sourceTS  sql.NullString
		haVersion sql.NullString
		errorLog  sql.NullString
		status    string
		createdAt string
		updatedAt string
	)

	err := s.Scan(&snap.ID, &sourceTS, &haVersion, &status, &errorLog, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	snap.Status = Status(status)

	if sourceTS.Valid {
		ts, err := time.Parse(time.RFC3339, sourceTS.String)
		if err != nil {
			return nil, fmt.Errorf("parsing source_timestamp: %w", err)
		}
		snap.SourceTimestamp = &ts
	}
	if haVersion.Valid {
		snap.HAVersion = &haVersion.String
	}
	if errorLog.Valid {
		snap.ErrorLog = &errorLog.String
	}

	if snap.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if snap.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &snap, nil
}
