// Package profiles manages the specialised projections extracted from
// entity attributes during import: persons, zones, automations and media
// players.
//
// Each projection keeps one row per natural key, overwritten by every
// import. They exist because these domains carry structured attributes
// worth querying directly (GPS coordinates, run modes, volume levels)
// rather than digging through the generic attribute history.
//
// Rows reference entity_ids weakly; the entity registry is not consulted
// and orphans are tolerated.
package profiles
