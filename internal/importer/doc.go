// Package importer implements the ingestion pipeline for controller
// full-state exports.
//
// One call to Import turns a decoded export document into:
//   - one snapshot record bracketing the run,
//   - overwritten projection rows (areas, devices, entities, persons,
//     zones, automations, media players, services), and
//   - appended history rows (entity_states, entity_attributes).
//
// The pipeline is strictly sequential and all-or-nothing at the run
// level: any store failure marks the snapshot failed and aborts, but
// rows already written stay put. There is no rollback; the failed
// snapshot is the audit marker for the incomplete run.
//
// Imports are serialised by a single-slot semaphore. A second Import
// while one is in flight fails fast with ErrImportInProgress.
package importer
