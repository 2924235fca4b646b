// Package hub provides the client for the home-automation hub that exposes
// printer telemetry as sensor entities.
//
// The hub is an external collaborator: this package only reads entity
// snapshots from its states endpoint, authenticated with a long-lived
// bearer token. Snapshot interpretation (which entities belong to which
// printer) lives in the entity and printer packages.
//
// # Usage
//
//	client := hub.NewClient(cfg.Hub)
//	entities, err := client.States(ctx)
//	if err != nil {
//	    return err
//	}
//	printers := printer.Aggregate(entities)
//
// Outbound calls carry a bounded timeout from config; a stalled hub is
// reported as an error rather than hanging the caller.
package hub
