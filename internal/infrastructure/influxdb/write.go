package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteEntityState mirrors one imported entity state to InfluxDB.
//
// The point carries the raw state string and, when the state parses as a
// number, a numeric value field so dashboards can graph sensors directly.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - entityID: Full entity identifier (e.g., "sensor.kitchen_temperature")
//   - domain: Entity domain (e.g., "sensor", "light")
//   - state: Raw state value from the export
//   - timestamp: Point timestamp (typically the state's lastUpdated, or import time)
func (c *Client) WriteEntityState(entityID, domain, state string, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	fields := map[string]interface{}{
		"state": state,
	}
	if value, err := strconv.ParseFloat(state, 64); err == nil {
		fields["value"] = value
	}

	point := write.NewPoint(
		"entity_state",
		map[string]string{
			"entity_id": entityID,
			"domain":    domain,
		},
		fields,
		timestamp,
	)

	c.writeAPI.WritePoint(point)
}

// WriteImportStats records summary statistics for a completed import run.
//
// Parameters:
//   - snapshotID: The snapshot the run produced
//   - stats: Counter name -> count (e.g., "entities" -> 132)
func (c *Client) WriteImportStats(snapshotID string, stats map[string]int) {
	if !c.IsConnected() {
		return
	}

	fields := make(map[string]interface{}, len(stats))
	for name, count := range stats {
		fields[name] = count
	}
	if len(fields) == 0 {
		return
	}

	point := write.NewPoint(
		"import_run",
		map[string]string{
			"snapshot_id": snapshotID,
		},
		fields,
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
