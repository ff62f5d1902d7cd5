// Package inventory manages the area and device registries.
//
// Areas and devices are projection tables: exactly one row per natural key
// (area_id, device_id), overwritten in place by every import via natural-key
// upsert. Re-importing the same export leaves the registries bit-identical.
//
// References between tables are weak. A device may name an area_id that no
// area row carries, and deleting neither cascades; orphans are tolerated
// and resolved at query time.
package inventory
