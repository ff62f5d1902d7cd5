// Package snapshot manages the lifecycle of import snapshots.
//
// Every import run produces exactly one snapshot record. The record is
// created with status "processing" before any entity data is written, and
// is moved to "completed" or "failed" when the run finishes. Snapshots are
// never deleted: they form the audit trail that ties every appended state
// row back to the export it came from.
//
// Status Transitions:
//
//	pending -> processing -> completed
//	                      -> failed (error_log populated)
//
// The repository does not enforce transition order; the importer is the
// only writer and drives the transitions.
package snapshot
