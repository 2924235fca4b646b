package printer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/openspool/spoolbridge/internal/entity"
	"github.com/openspool/spoolbridge/internal/hub"
)

// Aggregate folds a flat hub entity list into structured printers.
// Entities matching no known pattern are dropped. The result is ordered
// by prefix, AMS units by index and trays by number, so the output is
// stable regardless of the order the hub returns entities in.
//
// Parameters:
//   - entities: raw hub entity states.
//
// Returns:
//   - []Printer: one entry per distinct printer prefix.
func Aggregate(entities []hub.Entity) []Printer {
	builders := make(map[string]*Printer)

	for _, ent := range entities {
		match, err := entity.Classify(ent.EntityID)
		if err != nil {
			continue
		}

		p, ok := builders[match.GroupKey()]
		if !ok {
			p = &Printer{Prefix: match.GroupKey(), Locale: match.Locale}
			builders[match.GroupKey()] = p
		}

		apply(p, match, ent)
	}

	printers := make([]Printer, 0, len(builders))
	for _, p := range builders {
		finalise(p)
		printers = append(printers, *p)
	}

	sort.Slice(printers, func(i, j int) bool {
		return printers[i].Prefix < printers[j].Prefix
	})

	return printers
}

// Find returns the aggregated printer with the given prefix.
func Find(printers []Printer, prefix string) (*Printer, error) {
	for i := range printers {
		if printers[i].Prefix == prefix {
			return &printers[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrPrinterNotFound, prefix)
}

// ResolveTray classifies an entity identifier and locates the tray slot
// it names on the aggregated printers.
//
// Returns:
//   - *Printer, *TraySlot: the owning printer and the slot.
//   - error: ErrMalformedIdentity when the identifier is not a tray or
//     external spool sensor; ErrPrinterNotFound when no printer carries
//     its prefix.
func ResolveTray(printers []Printer, entityID string) (*Printer, *TraySlot, error) {
	match, err := entity.Classify(entityID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrMalformedIdentity, entityID)
	}

	var amsIndex, trayNumber int
	switch match.Kind {
	case entity.KindTray:
		amsIndex, trayNumber = match.AMSIndex, match.TrayNumber
	case entity.KindExternalSpool:
		amsIndex, trayNumber = ExternalAMSIndex, 0
	default:
		return nil, nil, fmt.Errorf("%w: %q is a %s sensor", ErrMalformedIdentity, entityID, match.Kind)
	}

	p, err := Find(printers, match.GroupKey())
	if err != nil {
		return nil, nil, err
	}

	slot := p.Tray(amsIndex, trayNumber)
	if slot == nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrMalformedIdentity, entityID)
	}

	return p, slot, nil
}

// apply merges a single classified entity into the printer under
// construction. The print status sensor's locale wins when entities of
// one printer disagree; mixed locales on a single device mean a renamed
// entity and the status sensor is the most reliable anchor.
func apply(p *Printer, match entity.Match, ent hub.Entity) {
	switch match.Kind {
	case entity.KindPrintStatus:
		p.Status = ent.State
		p.Locale = match.Locale
		if name := attrString(ent.Attributes, "friendly_name"); name != "" {
			p.Name = name
		}
	case entity.KindStage:
		p.Stage = ent.State
	case entity.KindProgress:
		p.ProgressPercent = ent.State
	case entity.KindWeight:
		p.PrintWeight = ent.State
	case entity.KindAMSHumidity:
		unit := amsUnit(p, match.AMSIndex)
		unit.Humidity = ent.State
	case entity.KindTray:
		unit := amsUnit(p, match.AMSIndex)
		unit.Trays = append(unit.Trays, traySlot(p.Prefix, match, ent))
	case entity.KindExternalSpool:
		slot := traySlot(p.Prefix, match, ent)
		p.External = &slot
	}
}

// amsUnit returns the builder's AMS unit with the given index, creating
// it on first use.
func amsUnit(p *Printer, index int) *AMSUnit {
	for i := range p.AMSUnits {
		if p.AMSUnits[i].Index == index {
			return &p.AMSUnits[i]
		}
	}

	p.AMSUnits = append(p.AMSUnits, AMSUnit{Index: index})

	return &p.AMSUnits[len(p.AMSUnits)-1]
}

func traySlot(prefix string, match entity.Match, ent hub.Entity) TraySlot {
	amsIndex, trayNumber := match.AMSIndex, match.TrayNumber
	if match.Kind == entity.KindExternalSpool {
		amsIndex, trayNumber = ExternalAMSIndex, 0
	}

	slot := TraySlot{
		Key:          TrayKey(prefix, amsIndex, trayNumber),
		EntityID:     ent.EntityID,
		AMSIndex:     amsIndex,
		TrayNumber:   trayNumber,
		FilamentName: attrString(ent.Attributes, "name"),
		Material:     ent.State,
		Color:        attrString(ent.Attributes, "color"),
		TagUID:       attrString(ent.Attributes, "tag_uid"),
	}

	if emptySlot(slot) {
		slot.Empty = true
		slot.Material = ""
		slot.FilamentName = ""
		slot.TagUID = ""
	}

	return slot
}

// emptySlot reports whether a tray slot carries no filament. Integrations
// report "Empty" with varying capitalisation depending on locale pack
// version, so the comparison is case-insensitive; an absent state or an
// "Empty" filament name mean the same thing.
func emptySlot(slot TraySlot) bool {
	return slot.Material == "" ||
		strings.EqualFold(slot.Material, emptyFilament) ||
		strings.EqualFold(slot.FilamentName, emptyFilament)
}

func finalise(p *Printer) {
	sort.Slice(p.AMSUnits, func(i, j int) bool {
		return p.AMSUnits[i].Index < p.AMSUnits[j].Index
	})
	for i := range p.AMSUnits {
		trays := p.AMSUnits[i].Trays
		sort.Slice(trays, func(a, b int) bool {
			return trays[a].TrayNumber < trays[b].TrayNumber
		})
	}
}

func attrString(attrs map[string]any, key string) string {
	if attrs == nil {
		return ""
	}
	if value, ok := attrs[key].(string); ok {
		return value
	}

	return ""
}
