package mqtt

import "fmt"

// Topic prefixes for the Attic MQTT namespace.
//
// Attic only publishes; all topics live under a single "attic" prefix so
// subscribers can watch the archive with one wildcard subscription.
const (
	// TopicPrefix is the base for all Attic topics.
	TopicPrefix = "attic"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "attic/system"
)

// Topics provides builders for Attic MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// SystemStatus returns the topic for Attic's own online/offline status.
// The broker publishes the LWT here if Attic disconnects unexpectedly.
//
// Example: attic/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// SnapshotStatus returns the retained topic for a snapshot's lifecycle status.
//
// Example: attic/snapshot/9f2c.../status
func (Topics) SnapshotStatus(snapshotID string) string {
	return fmt.Sprintf("%s/snapshot/%s/status", TopicPrefix, snapshotID)
}

// ImportEvent returns the topic for import lifecycle events.
//
// Example: attic/event/import_completed
func (Topics) ImportEvent(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefix, eventType)
}
