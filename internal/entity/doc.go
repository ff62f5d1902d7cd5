// Package entity manages the entity registry and the append-only state
// history.
//
// The entities table is a projection: one row per entity_id, overwritten by
// natural-key upsert on every import. The entity_states and
// entity_attributes tables are history: every import appends a new state
// row (and its attribute rows) regardless of whether the state changed, so
// the archive records what the controller reported at each import, not just
// transitions.
//
// History rows reference entities and snapshots by plain string ID with no
// FOREIGN KEY; an entity that later disappears from the registry keeps its
// history.
//
// History ordering is created_at DESC, id DESC. The id tiebreak matters
// because created_at has second granularity and rapid successive imports
// can share a timestamp.
package entity
