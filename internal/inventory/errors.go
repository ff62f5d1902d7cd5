package inventory

import "errors"

// Domain-specific errors for inventory operations.
var (
	// ErrAreaNotFound is returned when an area ID does not exist.
	ErrAreaNotFound = errors.New("area not found")

	// ErrDeviceNotFound is returned when a device ID does not exist.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrMissingNaturalKey is returned when an upsert is attempted
	// without the record's natural key.
	ErrMissingNaturalKey = errors.New("missing natural key")
)
