package entity

import "time"

// Entity represents one row of the entity registry projection.
// This matches the database schema in migrations/20260402_100000_initial_schema.up.sql.
type Entity struct {
	// EntityID is the natural key, e.g. "light.kitchen_ceiling".
	EntityID string `json:"entity_id"`

	// EntityType is the export's grouping key for this entity
	// (e.g. "lights", "sensors").
	EntityType string `json:"entity_type"`

	// Domain is the part of EntityID before the first dot.
	Domain string `json:"domain"`

	// ObjectID is the part of EntityID after the first dot.
	ObjectID string `json:"object_id"`

	FriendlyName *string `json:"friendly_name,omitempty"`

	// DeviceID and AreaID are weak references into the inventory tables.
	DeviceID *string `json:"device_id,omitempty"`
	AreaID   *string `json:"area_id,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// State represents one appended history row for an entity.
type State struct {
	// ID is the autoincrement row ID, used as the history tiebreak.
	ID int64 `json:"id"`

	EntityID   string `json:"entity_id"`
	SnapshotID string `json:"snapshot_id"`

	// StateValue is the raw state string from the export ("on", "21.5", ...).
	StateValue *string `json:"state,omitempty"`

	// StateClass carries the export's state_class attribute when present
	// (e.g. "measurement", "total_increasing").
	StateClass *string `json:"state_class,omitempty"`

	// LastChanged and LastUpdated are the controller's own timestamps,
	// kept only when the export carried them.
	LastChanged *time.Time `json:"last_changed,omitempty"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`

	// CreatedAt is when this row was appended to the archive.
	CreatedAt time.Time `json:"created_at"`

	// Attributes holds the row's attribute set when loaded alongside the state.
	Attributes []Attribute `json:"attributes,omitempty"`
}

// Attribute represents one classified attribute of a state row.
type Attribute struct {
	ID           int64  `json:"id"`
	EntityStateID int64 `json:"entity_state_id"`

	// Key is the attribute name as it appeared in the export.
	Key string `json:"attr_key"`

	// Value is the attribute value serialised as JSON.
	Value *string `json:"attr_value,omitempty"`

	// Type is the classification tag: string, number, boolean, array or object.
	Type string `json:"attr_type"`
}

// HistoryFilter narrows a state history query.
// Zero-value fields are ignored.
type HistoryFilter struct {
	// Since excludes rows appended before this time.
	Since *time.Time

	// Until excludes rows appended after this time.
	Until *time.Time

	// Limit caps the number of rows returned. <= 0 means no limit.
	Limit int
}
