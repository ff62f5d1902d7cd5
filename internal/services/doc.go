// Package services manages the service catalogue projection.
//
// The controller export lists the callable services per domain
// (light.turn_on, media_player.volume_set, ...). The catalogue keeps one
// row per "domain.service" full name, overwritten by every import. Field
// schemas are stored as opaque JSON; Attic archives them without
// interpreting parameter types.
package services
