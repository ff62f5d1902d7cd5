package entity

import "errors"

// Domain-specific errors for entity operations.
var (
	// ErrEntityNotFound is returned when an entity ID does not exist.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrStateNotFound is returned when an entity has no recorded states.
	ErrStateNotFound = errors.New("entity state not found")

	// ErrMissingNaturalKey is returned when an upsert is attempted
	// without the record's natural key.
	ErrMissingNaturalKey = errors.New("missing natural key")
)
