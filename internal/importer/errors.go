package importer

import "errors"

// Domain-specific errors for import operations.
var (
	// ErrImportInProgress is returned when an import is requested while
	// another one holds the single import slot.
	ErrImportInProgress = errors.New("import already in progress")

	// ErrInvalidDocument is returned when the export is not a JSON object.
	ErrInvalidDocument = errors.New("invalid export document")
)
