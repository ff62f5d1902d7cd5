package services

import "errors"

// Domain-specific errors for service catalogue operations.
var (
	// ErrServiceNotFound is returned when a service full name does not exist.
	ErrServiceNotFound = errors.New("service not found")

	// ErrMissingNaturalKey is returned when an upsert is attempted
	// without the record's natural key.
	ErrMissingNaturalKey = errors.New("missing natural key")
)
