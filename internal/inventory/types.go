package inventory

import "time"

// Area represents a physical area (room, floor, outdoor space) from the
// controller's area registry.
// This matches the database schema in migrations/20260402_100000_initial_schema.up.sql.
type Area struct {
	// AreaID is the natural key from the controller's registry.
	AreaID string `json:"area_id"`

	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Floor   *string  `json:"floor,omitempty"`
	Icon    *string  `json:"icon,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Device represents a physical or logical device from the controller's
// device registry. Connections and Identifiers keep the export's nested
// list shape ([["mac", "aa:bb:..."], ...]) without interpretation.
type Device struct {
	// DeviceID is the natural key from the controller's registry.
	DeviceID string `json:"device_id"`

	Name             string  `json:"name"`
	Manufacturer     *string `json:"manufacturer,omitempty"`
	Model            *string `json:"model,omitempty"`
	SWVersion        *string `json:"sw_version,omitempty"`
	ConfigurationURL *string `json:"configuration_url,omitempty"`

	Connections []any `json:"connections,omitempty"`
	Identifiers []any `json:"identifiers,omitempty"`

	// VIADeviceID names the parent device (e.g., a hub) when one exists.
	ViaDeviceID *string `json:"via_device_id,omitempty"`

	// AreaID is a weak reference into the areas table.
	AreaID *string `json:"area_id,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
