package events

import "time"

// Type discriminates synchronization events.
type Type string

const (
	// TypeUsage is emitted when filament usage has been deducted from a
	// spool.
	TypeUsage Type = "usage"

	// TypeAssign is emitted when a spool has been assigned to a tray,
	// manually or via a tag read.
	TypeAssign Type = "assign"

	// TypeUnassign is emitted when a spool's tray assignment has been
	// cleared.
	TypeUnassign Type = "unassign"

	// TypeTrayChange is emitted when a tray's contents changed and the
	// inventory was reconciled against it.
	TypeTrayChange Type = "tray_change"

	// TypePrintWarning is emitted when the printer raised a warning
	// relevant to filament handling.
	TypePrintWarning Type = "print_warning"
)

// SyncEvent is a single synchronization outcome broadcast to
// subscribers. Fields beyond Type and Timestamp are populated per type;
// usage events carry weights, assignment events carry spool and tray,
// warnings carry a message.
type SyncEvent struct {
	Type         Type      `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	Printer      string    `json:"printer,omitempty"`
	TrayKey      string    `json:"tray_key,omitempty"`
	SpoolID      int       `json:"spool_id,omitempty"`
	FilamentName string    `json:"filament_name,omitempty"`
	UsedWeight   float64   `json:"used_weight,omitempty"`
	NewRemaining float64   `json:"new_remaining"`
	Message      string    `json:"message,omitempty"`
}
