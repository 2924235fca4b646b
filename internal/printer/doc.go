// Package printer assembles flat hub entity lists into structured
// printer views.
//
// A home-automation hub exposes each printer as a loose bag of sensor
// entities sharing a common identifier prefix. The aggregator classifies
// every entity, groups them by that prefix, and folds the result into
// Printer values with ordered AMS units, numbered tray slots and an
// optional external spool holder.
//
// Entities that match no known pattern are dropped silently; the hub
// carries hundreds of unrelated sensors and only printer telemetry is of
// interest here.
package printer
