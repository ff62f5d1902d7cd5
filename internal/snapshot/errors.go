package snapshot

import "errors"

// Domain-specific errors for snapshot operations.
var (
	// ErrSnapshotNotFound is returned when a snapshot ID does not exist.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)
