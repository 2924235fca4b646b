package syncengine

import (
	"context"
	"fmt"
	"time"

	"github.com/openspool/spoolbridge/internal/activity"
	"github.com/openspool/spoolbridge/internal/entity"
	"github.com/openspool/spoolbridge/internal/events"
	"github.com/openspool/spoolbridge/internal/hub"
	"github.com/openspool/spoolbridge/internal/infrastructure/logging"
	"github.com/openspool/spoolbridge/internal/inventory"
	"github.com/openspool/spoolbridge/internal/printer"
)

// HubClient provides printer telemetry from the home-automation hub.
type HubClient interface {
	States(ctx context.Context) ([]hub.Entity, error)
}

// InventoryClient mutates the Spoolman inventory.
type InventoryClient interface {
	ListSpools(ctx context.Context) ([]inventory.Spool, error)
	GetSpool(ctx context.Context, id int) (inventory.Spool, error)
	UseWeight(ctx context.Context, id int, grams float64) error
	SetActiveTray(ctx context.Context, id int, trayKey string) error
	ClearActiveTray(ctx context.Context, id int) error
}

// Publisher broadcasts synchronization events to in-process
// subscribers.
type Publisher interface {
	Publish(event events.SyncEvent)
}

// UsageRecorder receives successful usage deductions for telemetry.
// Implementations must not block.
type UsageRecorder interface {
	WriteUsage(spoolID int, trayKey string, deducted, remaining float64)
}

// Engine coordinates event handling between the hub, the inventory, the
// broadcaster and the activity log.
type Engine struct {
	hub       HubClient
	inventory InventoryClient
	publisher Publisher
	activity  activity.Repository
	telemetry UsageRecorder // optional, may be nil
	logger    *logging.Logger
}

// New creates a synchronization engine.
//
// Parameters:
//   - hubClient: source of printer telemetry.
//   - inventoryClient: Spoolman API client.
//   - publisher: event broadcaster for live updates.
//   - activityRepo: append-only outcome log.
//   - telemetry: optional usage recorder, nil to disable.
//   - logger: structured logger.
func New(hubClient HubClient, inventoryClient InventoryClient, publisher Publisher,
	activityRepo activity.Repository, telemetry UsageRecorder, logger *logging.Logger,
) *Engine {
	return &Engine{
		hub:       hubClient,
		inventory: inventoryClient,
		publisher: publisher,
		activity:  activityRepo,
		telemetry: telemetry,
		logger:    logger,
	}
}

// HandleSpoolUsage deducts reported filament usage from the spool
// claiming the tray. Non-positive weights and identifiers that do not
// name a tray are ignored without touching the inventory.
func (e *Engine) HandleSpoolUsage(ctx context.Context, event UsageEvent) Result {
	if event.UsedWeight <= 0 {
		return e.finish(ctx, events.TypeUsage, Result{
			Status:  StatusIgnored,
			Message: fmt.Sprintf("non-positive used weight %.1f", event.UsedWeight),
		}, nil)
	}

	trayKey, err := trayKeyFor(event.EntityID)
	if err != nil {
		return e.finish(ctx, events.TypeUsage, Result{
			Status:  StatusIgnored,
			Message: fmt.Sprintf("%q does not name a tray", event.EntityID),
		}, nil)
	}

	spools, err := e.inventory.ListSpools(ctx)
	if err != nil {
		return e.finish(ctx, events.TypeUsage, Result{
			Status:  StatusError,
			TrayKey: trayKey,
			Message: "listing spools failed",
		}, err)
	}

	spool, err := inventory.MatchByTrayClaim(spools, trayKey)
	if err != nil {
		return e.finish(ctx, events.TypeUsage, Result{
			Status:  StatusNoMatch,
			TrayKey: trayKey,
			Message: fmt.Sprintf("no spool claims tray %s", trayKey),
		}, nil)
	}

	if err := e.inventory.UseWeight(ctx, spool.ID, event.UsedWeight); err != nil {
		return e.finish(ctx, events.TypeUsage, Result{
			Status:  StatusError,
			SpoolID: spool.ID,
			TrayKey: trayKey,
			Message: "deducting usage failed",
		}, err)
	}

	// Project the new remaining weight locally rather than re-fetching;
	// the broadcast must reflect the deduction just applied even if
	// another writer races us.
	remaining := spool.RemainingWeight - event.UsedWeight

	e.publisher.Publish(events.SyncEvent{
		Type:         events.TypeUsage,
		Timestamp:    time.Now().UTC(),
		TrayKey:      trayKey,
		SpoolID:      spool.ID,
		FilamentName: spool.Filament.Name,
		UsedWeight:   event.UsedWeight,
		NewRemaining: remaining,
	})

	if e.telemetry != nil {
		e.telemetry.WriteUsage(spool.ID, trayKey, event.UsedWeight, remaining)
	}

	return e.finish(ctx, events.TypeUsage, Result{
		Status:       StatusSuccess,
		SpoolID:      spool.ID,
		TrayKey:      trayKey,
		NewRemaining: remaining,
		Message:      fmt.Sprintf("deducted %.1fg from spool %d", event.UsedWeight, spool.ID),
	}, nil)
}

// HandleTrayChange reconciles the inventory after a tray's contents
// changed. An inserted spool is matched by its RFID tag; an emptied
// tray releases whatever spool claimed it.
func (e *Engine) HandleTrayChange(ctx context.Context, event TrayChangeEvent) Result {
	states, err := e.hub.States(ctx)
	if err != nil {
		return e.finish(ctx, events.TypeTrayChange, Result{
			Status:  StatusError,
			Message: "fetching hub states failed",
		}, err)
	}

	printers := printer.Aggregate(states)
	p, slot, err := printer.ResolveTray(printers, event.EntityID)
	if err != nil {
		return e.finish(ctx, events.TypeTrayChange, Result{
			Status:  StatusIgnored,
			Message: fmt.Sprintf("%q does not resolve to a tray", event.EntityID),
		}, nil)
	}

	spools, err := e.inventory.ListSpools(ctx)
	if err != nil {
		return e.finish(ctx, events.TypeTrayChange, Result{
			Status:  StatusError,
			TrayKey: slot.Key,
			Message: "listing spools failed",
		}, err)
	}

	if slot.Empty {
		return e.releaseTray(ctx, p.Prefix, slot.Key, spools)
	}

	tagUID := event.TagUID
	if tagUID == "" {
		tagUID = slot.TagUID
	}

	spool, err := inventory.MatchByTag(spools, tagUID)
	if err != nil {
		return e.finish(ctx, events.TypeTrayChange, Result{
			Status:  StatusNoMatch,
			TrayKey: slot.Key,
			Message: fmt.Sprintf("tag %q matches no single spool", tagUID),
		}, nil)
	}

	if spool.ActiveTray() == slot.Key {
		return e.finish(ctx, events.TypeTrayChange, Result{
			Status:  StatusIgnored,
			SpoolID: spool.ID,
			TrayKey: slot.Key,
			Message: fmt.Sprintf("spool %d already assigned to %s", spool.ID, slot.Key),
		}, nil)
	}

	if err := e.claimTray(ctx, spool, slot.Key, spools); err != nil {
		return e.finish(ctx, events.TypeTrayChange, Result{
			Status:  StatusError,
			SpoolID: spool.ID,
			TrayKey: slot.Key,
			Message: "updating tray assignment failed",
		}, err)
	}

	e.publisher.Publish(events.SyncEvent{
		Type:         events.TypeTrayChange,
		Timestamp:    time.Now().UTC(),
		Printer:      p.Prefix,
		TrayKey:      slot.Key,
		SpoolID:      spool.ID,
		FilamentName: spool.Filament.Name,
		NewRemaining: spool.RemainingWeight,
	})

	return e.finish(ctx, events.TypeTrayChange, Result{
		Status:  StatusSuccess,
		SpoolID: spool.ID,
		TrayKey: slot.Key,
		Message: fmt.Sprintf("spool %d assigned to %s", spool.ID, slot.Key),
	}, nil)
}

// HandlePrintWarning relays a printer warning to connected clients. It
// never mutates the inventory.
func (e *Engine) HandlePrintWarning(ctx context.Context, event PrintWarningEvent) Result {
	prefix := ""
	if match, err := entity.Classify(event.EntityID); err == nil {
		prefix = match.GroupKey()
	}

	e.publisher.Publish(events.SyncEvent{
		Type:      events.TypePrintWarning,
		Timestamp: time.Now().UTC(),
		Printer:   prefix,
		Message:   event.Message,
	})

	return e.finish(ctx, events.TypePrintWarning, Result{
		Status:  StatusSuccess,
		Message: event.Message,
	}, nil)
}

// Assign manually binds a spool to a tray, releasing any other spool
// that claimed the tray first.
func (e *Engine) Assign(ctx context.Context, spoolID int, trayKey string) Result {
	if trayKey == "" {
		return e.finish(ctx, events.TypeAssign, Result{
			Status:  StatusIgnored,
			SpoolID: spoolID,
			Message: "missing tray key",
		}, nil)
	}

	spool, err := e.inventory.GetSpool(ctx, spoolID)
	if err != nil {
		return e.finish(ctx, events.TypeAssign, Result{
			Status:  StatusError,
			SpoolID: spoolID,
			TrayKey: trayKey,
			Message: "fetching spool failed",
		}, err)
	}

	spools, err := e.inventory.ListSpools(ctx)
	if err != nil {
		return e.finish(ctx, events.TypeAssign, Result{
			Status:  StatusError,
			SpoolID: spoolID,
			TrayKey: trayKey,
			Message: "listing spools failed",
		}, err)
	}

	if err := e.claimTray(ctx, spool, trayKey, spools); err != nil {
		return e.finish(ctx, events.TypeAssign, Result{
			Status:  StatusError,
			SpoolID: spoolID,
			TrayKey: trayKey,
			Message: "updating tray assignment failed",
		}, err)
	}

	e.publisher.Publish(events.SyncEvent{
		Type:         events.TypeAssign,
		Timestamp:    time.Now().UTC(),
		TrayKey:      trayKey,
		SpoolID:      spool.ID,
		FilamentName: spool.Filament.Name,
		NewRemaining: spool.RemainingWeight,
	})

	return e.finish(ctx, events.TypeAssign, Result{
		Status:  StatusSuccess,
		SpoolID: spool.ID,
		TrayKey: trayKey,
		Message: fmt.Sprintf("spool %d assigned to %s", spool.ID, trayKey),
	}, nil)
}

// Unassign clears a spool's tray assignment. Clearing a spool with no
// assignment is ignored rather than an error.
func (e *Engine) Unassign(ctx context.Context, spoolID int) Result {
	spool, err := e.inventory.GetSpool(ctx, spoolID)
	if err != nil {
		return e.finish(ctx, events.TypeUnassign, Result{
			Status:  StatusError,
			SpoolID: spoolID,
			Message: "fetching spool failed",
		}, err)
	}

	trayKey := spool.ActiveTray()
	if trayKey == "" {
		return e.finish(ctx, events.TypeUnassign, Result{
			Status:  StatusIgnored,
			SpoolID: spoolID,
			Message: fmt.Sprintf("spool %d has no tray assignment", spoolID),
		}, nil)
	}

	if err := e.inventory.ClearActiveTray(ctx, spoolID); err != nil {
		return e.finish(ctx, events.TypeUnassign, Result{
			Status:  StatusError,
			SpoolID: spoolID,
			TrayKey: trayKey,
			Message: "clearing tray assignment failed",
		}, err)
	}

	e.publisher.Publish(events.SyncEvent{
		Type:         events.TypeUnassign,
		Timestamp:    time.Now().UTC(),
		TrayKey:      trayKey,
		SpoolID:      spool.ID,
		FilamentName: spool.Filament.Name,
		NewRemaining: spool.RemainingWeight,
	})

	return e.finish(ctx, events.TypeUnassign, Result{
		Status:  StatusSuccess,
		SpoolID: spool.ID,
		TrayKey: trayKey,
		Message: fmt.Sprintf("spool %d unassigned from %s", spool.ID, trayKey),
	}, nil)
}

// claimTray releases every existing claimant of the tray, then records
// the claim on the given spool.
func (e *Engine) claimTray(ctx context.Context, spool inventory.Spool, trayKey string, spools []inventory.Spool) error {
	for _, claimant := range inventory.Claimants(spools, trayKey) {
		if claimant.ID == spool.ID {
			continue
		}
		if err := e.inventory.ClearActiveTray(ctx, claimant.ID); err != nil {
			return err
		}
	}

	return e.inventory.SetActiveTray(ctx, spool.ID, trayKey)
}

// releaseTray handles a tray reported empty: whatever spool claimed it
// is unassigned.
func (e *Engine) releaseTray(ctx context.Context, prefix, trayKey string, spools []inventory.Spool) Result {
	claimants := inventory.Claimants(spools, trayKey)
	if len(claimants) == 0 {
		return e.finish(ctx, events.TypeTrayChange, Result{
			Status:  StatusIgnored,
			TrayKey: trayKey,
			Message: fmt.Sprintf("tray %s emptied, no spool claimed it", trayKey),
		}, nil)
	}

	for _, claimant := range claimants {
		if err := e.inventory.ClearActiveTray(ctx, claimant.ID); err != nil {
			return e.finish(ctx, events.TypeTrayChange, Result{
				Status:  StatusError,
				SpoolID: claimant.ID,
				TrayKey: trayKey,
				Message: "clearing tray assignment failed",
			}, err)
		}

		e.publisher.Publish(events.SyncEvent{
			Type:         events.TypeUnassign,
			Timestamp:    time.Now().UTC(),
			Printer:      prefix,
			TrayKey:      trayKey,
			SpoolID:      claimant.ID,
			FilamentName: claimant.Filament.Name,
			NewRemaining: claimant.RemainingWeight,
		})
	}

	return e.finish(ctx, events.TypeTrayChange, Result{
		Status:  StatusSuccess,
		SpoolID: claimants[0].ID,
		TrayKey: trayKey,
		Message: fmt.Sprintf("tray %s emptied, released %d spool(s)", trayKey, len(claimants)),
	}, nil)
}

// finish appends the activity record for a processed event and returns
// the result. Upstream errors are wrapped into the result message and
// logged; activity persistence failures are logged but never override
// the outcome.
func (e *Engine) finish(ctx context.Context, eventType events.Type, result Result, cause error) Result {
	if cause != nil {
		e.logger.Error("event handling failed",
			"event_type", string(eventType),
			"status", string(result.Status),
			"error", cause)
		result.Message = fmt.Sprintf("%s: %v", result.Message, cause)
	}

	details := map[string]any{"status": string(result.Status)}
	if result.SpoolID != 0 {
		details["spool_id"] = result.SpoolID
	}
	if result.TrayKey != "" {
		details["tray_key"] = result.TrayKey
	}

	record := &activity.Record{
		Type:    string(eventType),
		Message: result.Message,
		Details: details,
	}
	if err := e.activity.Append(ctx, record); err != nil {
		e.logger.Error("appending activity record failed",
			"event_type", string(eventType),
			"error", err)
	}

	return result
}

// trayKeyFor derives the stable tray key from a tray or external spool
// entity identifier.
func trayKeyFor(entityID string) (string, error) {
	match, err := entity.Classify(entityID)
	if err != nil {
		return "", err
	}

	switch match.Kind {
	case entity.KindTray:
		return printer.TrayKey(match.GroupKey(), match.AMSIndex, match.TrayNumber), nil
	case entity.KindExternalSpool:
		return printer.TrayKey(match.GroupKey(), printer.ExternalAMSIndex, 0), nil
	default:
		return "", fmt.Errorf("%w: %q is not a tray sensor", ErrInvalidInput, entityID)
	}
}
