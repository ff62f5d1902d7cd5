package services

import "time"

// Service represents one callable service from the controller's catalogue.
// This matches the database schema in migrations/20260402_100000_initial_schema.up.sql.
type Service struct {
	// FullName is the natural key, "domain.service_name".
	FullName string `json:"full_name"`

	Domain      string  `json:"domain"`
	ServiceName string  `json:"service_name"`
	Description *string `json:"description,omitempty"`

	// Fields is the parameter schema serialised as JSON, kept verbatim.
	Fields map[string]any `json:"fields,omitempty"`

	// Target is the targeting schema serialised as JSON, when present.
	Target *string `json:"target,omitempty"`

	// ResponseOptional records whether the service may return a response.
	ResponseOptional bool `json:"response_optional"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
