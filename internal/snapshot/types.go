package snapshot

import "time"

// Status represents the lifecycle state of a snapshot.
type Status string

// Snapshot lifecycle states.
const (
	// StatusPending indicates the snapshot row exists but processing has not started.
	StatusPending Status = "pending"

	// StatusProcessing indicates an import run is actively writing under this snapshot.
	StatusProcessing Status = "processing"

	// StatusCompleted indicates the import run finished successfully.
	StatusCompleted Status = "completed"

	// StatusFailed indicates the import run aborted; ErrorLog holds the reason.
	StatusFailed Status = "failed"
)

// Snapshot represents one import run of a controller export.
// This matches the database schema in migrations/20260402_100000_initial_schema.up.sql.
type Snapshot struct {
	// ID is a generated UUID, unique per import run.
	ID string `json:"id"`

	// SourceTimestamp is the export's own timestamp, when the export carried one.
	SourceTimestamp *time.Time `json:"source_timestamp,omitempty"`

	// HAVersion is the controller software version recorded in the export.
	HAVersion *string `json:"ha_version,omitempty"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// ErrorLog holds the failure reason when Status is failed.
	ErrorLog *string `json:"error_log,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
