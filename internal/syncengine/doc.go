// Package syncengine implements the state machine that keeps the
// Spoolman inventory aligned with what the printers report.
//
// The engine consumes webhook events (spool usage, tray changes, print
// warnings) and manual assignment requests, resolves them against the
// hub's aggregated printer state and the inventory, applies at most one
// inventory mutation per event, and reports the outcome as one of four
// statuses: success, no_match, ignored or error.
//
// Every processed event, whatever its outcome, appends exactly one
// record to the activity log. Successful mutations additionally publish
// a SyncEvent on the broadcaster and, when telemetry is configured,
// write a usage point.
package syncengine
