// Package telemetry provides optional InfluxDB connectivity for
// Spoolbridge usage history.
//
// It wraps the official influxdb-client-go v2 library with the
// connection, write and health-monitoring patterns used elsewhere in
// the codebase.
//
// # Purpose
//
// Spoolman tracks only the current remaining weight of each spool.
// Writing every usage deduction as a time-series point preserves the
// consumption history, so dashboards can answer how much filament a
// printer used last month or how fast a spool is draining.
//
// # Usage
//
//	client, err := telemetry.Connect(cfg.Telemetry)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteUsage(7, "x1c_abc_ams_1_tray_2", 50.0, 750.0)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered via
// the SetOnError callback. Connection and health check errors are
// returned directly. Telemetry is strictly best-effort: the sync engine
// never fails an event because a point could not be written.
package telemetry
