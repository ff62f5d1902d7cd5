package profiles

import "time"

// Person represents a tracked person from the controller.
// This matches the database schema in migrations/20260402_100000_initial_schema.up.sql.
type Person struct {
	// EntityID is the natural key: the person entity this row was
	// projected from.
	EntityID string `json:"entity_id"`

	// PersonID is the export's registry id attribute, falling back to the
	// entity's object_id when absent. Exports gain and lose this attribute
	// across controller upgrades, so it never keys the row.
	PersonID string `json:"person_id"`

	Name   string  `json:"name"`
	UserID *string `json:"user_id,omitempty"`

	// DeviceTrackers lists the tracker entity_ids feeding this person's location.
	DeviceTrackers []string `json:"device_trackers,omitempty"`

	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	GPSAccuracy *float64 `json:"gps_accuracy,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Zone represents a geographic zone.
type Zone struct {
	// EntityID is the natural key; zones have no separate registry id.
	EntityID string `json:"entity_id"`

	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Radius    *float64 `json:"radius,omitempty"`

	// Passive zones are used for automations only, never shown as a location.
	Passive bool `json:"passive"`

	// Persons lists the person entity_ids currently inside the zone.
	Persons []string `json:"persons,omitempty"`

	Icon *string `json:"icon,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Automation represents an automation's metadata and run counters.
type Automation struct {
	// EntityID is the natural key: the automation entity this row was
	// projected from.
	EntityID string `json:"entity_id"`

	// AutomationID is the export's registry id attribute, falling back to
	// the entity's object_id when absent. Like Person.PersonID it may
	// change between exports and never keys the row.
	AutomationID string `json:"automation_id"`

	Alias       string  `json:"alias"`
	Description *string `json:"description,omitempty"`

	// Mode is the run mode: single, restart, queued or parallel.
	// Defaults to single when the export omits it.
	Mode string `json:"mode"`

	// CurrentRuns is the number of runs in flight at export time.
	CurrentRuns int `json:"current_runs"`

	// MaxRuns caps queued/parallel runs; nil when the mode has no cap.
	MaxRuns *int `json:"max_runs,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MediaPlayer represents a media player's playback snapshot.
type MediaPlayer struct {
	// EntityID is the natural key.
	EntityID string `json:"entity_id"`

	VolumeLevel *float64 `json:"volume_level,omitempty"`
	IsMuted     bool     `json:"is_muted"`

	MediaContentType *string `json:"media_content_type,omitempty"`
	MediaTitle       *string `json:"media_title,omitempty"`
	MediaArtist      *string `json:"media_artist,omitempty"`

	// GroupMembers lists the entity_ids grouped with this player.
	GroupMembers []string `json:"group_members,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
