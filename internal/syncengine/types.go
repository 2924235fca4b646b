package syncengine

// Status classifies the outcome of a processed event.
type Status string

const (
	// StatusSuccess means the event resulted in an inventory mutation.
	StatusSuccess Status = "success"

	// StatusNoMatch means the event was understood but no inventory
	// record matched it. Nothing was mutated.
	StatusNoMatch Status = "no_match"

	// StatusIgnored means the event carried nothing actionable (zero
	// usage, an entity that is not a tray). Nothing was mutated.
	StatusIgnored Status = "ignored"

	// StatusError means an upstream call failed while handling the
	// event. The inventory may or may not have been mutated.
	StatusError Status = "error"
)

// Result describes how an event was handled.
type Result struct {
	Status       Status  `json:"status"`
	Message      string  `json:"message,omitempty"`
	SpoolID      int     `json:"spool_id,omitempty"`
	TrayKey      string  `json:"tray_key,omitempty"`
	NewRemaining float64 `json:"new_remaining,omitempty"`
}

// UsageEvent reports filament consumed from a tray, typically sent by a
// hub automation when a print finishes.
type UsageEvent struct {
	EntityID   string  `json:"entity_id"`
	UsedWeight float64 `json:"used_weight"`
}

// TrayChangeEvent reports that a tray's contents changed: a spool was
// inserted, removed or swapped. TagUID is optional; when empty the tag
// is read from the tray's current hub state.
type TrayChangeEvent struct {
	EntityID string `json:"entity_id"`
	TagUID   string `json:"tag_uid,omitempty"`
}

// PrintWarningEvent relays a printer warning worth surfacing to
// connected clients, such as a filament runout.
type PrintWarningEvent struct {
	EntityID string `json:"entity_id"`
	Message  string `json:"message"`
}
