package printer

import (
	"fmt"

	"github.com/openspool/spoolbridge/internal/entity"
)

// ExternalAMSIndex marks a tray slot that is the printer's external
// spool holder rather than part of an AMS unit.
const ExternalAMSIndex = -1

// emptyFilament is the state Bambu integrations report for an unloaded
// tray.
const emptyFilament = "Empty"

// TraySlot is a single filament position on a printer: one AMS tray or
// the external spool holder.
type TraySlot struct {
	Key          string `json:"key"`
	EntityID     string `json:"entity_id"`
	AMSIndex     int    `json:"ams_index"`
	TrayNumber   int    `json:"tray_number"`
	FilamentName string `json:"filament_name,omitempty"`
	Material     string `json:"material,omitempty"`
	Color        string `json:"color,omitempty"`
	TagUID       string `json:"tag_uid,omitempty"`
	Empty        bool   `json:"empty"`
}

// AMSUnit is one AMS attached to a printer, with its trays ordered by
// tray number.
type AMSUnit struct {
	Index    int        `json:"index"`
	Humidity string     `json:"humidity,omitempty"`
	Trays    []TraySlot `json:"trays"`
}

// Printer is the aggregated view of a single printer's telemetry.
type Printer struct {
	Prefix          string        `json:"prefix"`
	Locale          entity.Locale `json:"locale"`
	Name            string        `json:"name,omitempty"`
	Status          string        `json:"status,omitempty"`
	Stage           string        `json:"stage,omitempty"`
	ProgressPercent string        `json:"progress_percent,omitempty"`
	PrintWeight     string        `json:"print_weight,omitempty"`
	AMSUnits        []AMSUnit     `json:"ams_units"`
	External        *TraySlot     `json:"external,omitempty"`
}

// TrayKey builds the stable identifier a spool's active_tray extra
// records for an AMS tray.
//
// Parameters:
//   - prefix: printer grouping prefix.
//   - amsIndex: AMS unit number, or ExternalAMSIndex for the external
//     holder.
//   - trayNumber: tray position within the unit (ignored for external).
//
// Returns:
//   - string: key of the form prefix_ams_N_tray_M, or prefix_external.
func TrayKey(prefix string, amsIndex, trayNumber int) string {
	if amsIndex == ExternalAMSIndex {
		return prefix + "_external"
	}

	return fmt.Sprintf("%s_ams_%d_tray_%d", prefix, amsIndex, trayNumber)
}

// Tray finds a slot on the printer by AMS index and tray number.
//
// Returns:
//   - *TraySlot: the slot, or nil when the printer has no such position.
func (p *Printer) Tray(amsIndex, trayNumber int) *TraySlot {
	if amsIndex == ExternalAMSIndex {
		return p.External
	}

	for i := range p.AMSUnits {
		if p.AMSUnits[i].Index != amsIndex {
			continue
		}
		for j := range p.AMSUnits[i].Trays {
			if p.AMSUnits[i].Trays[j].TrayNumber == trayNumber {
				return &p.AMSUnits[i].Trays[j]
			}
		}
	}

	return nil
}
