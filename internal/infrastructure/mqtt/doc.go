// Package mqtt provides the optional MQTT event announcer for Attic.
//
// Attic is a passive archive: it never commands devices and never consumes
// MQTT traffic. The client here exists solely to announce snapshot lifecycle
// events (import started, completed, failed) so dashboards and the
// originating controller can react without polling the HTTP API.
//
// The client is publisher-only. Connection management follows the usual
// paho pattern: auto-reconnect with exponential backoff, Last Will and
// Testament on the system status topic for offline detection, and a
// graceful offline status on Close().
//
// Thread Safety: All methods are safe for concurrent use from multiple
// goroutines.
package mqtt
