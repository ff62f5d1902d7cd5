package profiles

import "errors"

// Domain-specific errors for profile operations.
var (
	// ErrPersonNotFound is returned when a person ID does not exist.
	ErrPersonNotFound = errors.New("person not found")

	// ErrZoneNotFound is returned when a zone entity ID does not exist.
	ErrZoneNotFound = errors.New("zone not found")

	// ErrAutomationNotFound is returned when an automation ID does not exist.
	ErrAutomationNotFound = errors.New("automation not found")

	// ErrMediaPlayerNotFound is returned when a media player entity ID does not exist.
	ErrMediaPlayerNotFound = errors.New("media player not found")

	// ErrMissingNaturalKey is returned when an upsert is attempted
	// without the record's natural key.
	ErrMissingNaturalKey = errors.New("missing natural key")
)
