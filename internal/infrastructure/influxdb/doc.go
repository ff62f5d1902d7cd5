// Package influxdb provides the optional time-series mirror for entity
// state history.
//
// The SQLite archive is the store of record; InfluxDB is a convenience
// mirror for long-range charting and downsampling. Every entity state row
// appended by the importer is also written here as a point when the mirror
// is enabled. Writes are non-blocking and batched; a mirror failure never
// fails an import.
//
// Thread Safety: All methods are safe for concurrent use from multiple
// goroutines.
package influxdb
