package printer

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/openspool/spoolbridge/internal/entity"
	"github.com/openspool/spoolbridge/internal/hub"
)

func trayEntity(id, material, name, tagUID string) hub.Entity {
	return hub.Entity{
		EntityID: id,
		State:    material,
		Attributes: map[string]any{
			"name":    name,
			"tag_uid": tagUID,
		},
	}
}

// fullPrinterEntities builds telemetry for one printer with two AMS
// units of four trays each plus an external spool holder.
func fullPrinterEntities(prefix string) []hub.Entity {
	entities := []hub.Entity{
		{EntityID: "sensor." + prefix + "_print_status", State: "printing", Attributes: map[string]any{"friendly_name": "X1C Print Status"}},
		{EntityID: "sensor." + prefix + "_current_stage", State: "auto_bed_leveling"},
		{EntityID: "sensor." + prefix + "_print_progress", State: "42"},
		{EntityID: "sensor." + prefix + "_print_weight", State: "127.3"},
		{EntityID: "sensor." + prefix + "_ams_1_humidity", State: "3"},
		{EntityID: "sensor." + prefix + "_ams_2_humidity", State: "2"},
		trayEntity("sensor."+prefix+"_external_spool", "PETG", "PETG HF", "D4E5F6"),
	}

	tags := []string{"A1", "A2", "A3", "A4", "B1", "B2", "B3", "B4"}
	i := 0
	for ams := 1; ams <= 2; ams++ {
		for tray := 1; tray <= 4; tray++ {
			id := "sensor." + prefix + entityTraySuffix(ams, tray)
			entities = append(entities, trayEntity(id, "PLA", "PLA Basic", tags[i]))
			i++
		}
	}

	return entities
}

func entityTraySuffix(ams, tray int) string {
	return "_ams_" + string(rune('0'+ams)) + "_tray_" + string(rune('0'+tray))
}

func TestAggregate_FullPrinter(t *testing.T) {
	entities := fullPrinterEntities("x1c_abc")

	// Shuffle to prove ordering does not depend on hub response order.
	rand.New(rand.NewSource(1)).Shuffle(len(entities), func(i, j int) {
		entities[i], entities[j] = entities[j], entities[i]
	})

	printers := Aggregate(entities)
	if len(printers) != 1 {
		t.Fatalf("len(printers) = %d, want 1", len(printers))
	}

	p := printers[0]
	if p.Prefix != "x1c_abc" {
		t.Errorf("Prefix = %q, want x1c_abc", p.Prefix)
	}
	if p.Status != "printing" {
		t.Errorf("Status = %q, want printing", p.Status)
	}
	if p.Name != "X1C Print Status" {
		t.Errorf("Name = %q", p.Name)
	}
	if p.Stage != "auto_bed_leveling" {
		t.Errorf("Stage = %q", p.Stage)
	}
	if p.ProgressPercent != "42" {
		t.Errorf("ProgressPercent = %q", p.ProgressPercent)
	}
	if p.PrintWeight != "127.3" {
		t.Errorf("PrintWeight = %q", p.PrintWeight)
	}

	if len(p.AMSUnits) != 2 {
		t.Fatalf("len(AMSUnits) = %d, want 2", len(p.AMSUnits))
	}
	for i, unit := range p.AMSUnits {
		if unit.Index != i+1 {
			t.Errorf("AMSUnits[%d].Index = %d, want %d", i, unit.Index, i+1)
		}
		if len(unit.Trays) != 4 {
			t.Fatalf("AMSUnits[%d] has %d trays, want 4", i, len(unit.Trays))
		}
		for j, tray := range unit.Trays {
			if tray.TrayNumber != j+1 {
				t.Errorf("unit %d tray[%d].TrayNumber = %d, want %d", unit.Index, j, tray.TrayNumber, j+1)
			}
		}
	}

	if p.External == nil {
		t.Fatal("External = nil, want external spool slot")
	}
	if p.External.Key != "x1c_abc_external" {
		t.Errorf("External.Key = %q", p.External.Key)
	}
	if p.External.TagUID != "D4E5F6" {
		t.Errorf("External.TagUID = %q", p.External.TagUID)
	}
}

func TestAggregate_MultiplePrintersAndDisambiguator(t *testing.T) {
	entities := []hub.Entity{
		{EntityID: "sensor.x1c_abc_print_status", State: "idle"},
		{EntityID: "sensor.x1c_abc_print_status_2", State: "printing"},
		{EntityID: "sensor.p1s_def_druckstatus", State: "pause"},
		{EntityID: "sensor.kitchen_temperature", State: "21.5"},
	}

	printers := Aggregate(entities)
	if len(printers) != 3 {
		t.Fatalf("len(printers) = %d, want 3", len(printers))
	}

	// Sorted by prefix: p1s_def, x1c_abc, x1c_abc_2.
	if printers[0].Prefix != "p1s_def" {
		t.Errorf("printers[0].Prefix = %q", printers[0].Prefix)
	}
	if printers[0].Locale != entity.LocaleDE {
		t.Errorf("printers[0].Locale = %q, want de", printers[0].Locale)
	}
	if printers[1].Prefix != "x1c_abc" || printers[1].Status != "idle" {
		t.Errorf("printers[1] = %q/%q", printers[1].Prefix, printers[1].Status)
	}
	if printers[2].Prefix != "x1c_abc_2" || printers[2].Status != "printing" {
		t.Errorf("printers[2] = %q/%q", printers[2].Prefix, printers[2].Status)
	}
}

func TestAggregate_EmptyTray(t *testing.T) {
	tests := []struct {
		name     string
		material string
		filament string
	}{
		{name: "capitalised state", material: "Empty", filament: "Empty"},
		{name: "lowercase state", material: "empty", filament: "empty"},
		{name: "uppercase state", material: "EMPTY", filament: "EMPTY"},
		{name: "absent state", material: "", filament: ""},
		{name: "empty name only", material: "PLA", filament: "Empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities := []hub.Entity{
				trayEntity("sensor.x1c_abc_ams_1_tray_1", tt.material, tt.filament, "unknown"),
			}

			printers := Aggregate(entities)
			if len(printers) != 1 {
				t.Fatalf("len(printers) = %d, want 1", len(printers))
			}

			tray := printers[0].Tray(1, 1)
			if tray == nil {
				t.Fatal("Tray(1, 1) = nil")
			}
			if !tray.Empty {
				t.Error("tray.Empty = false, want true")
			}
			if tray.TagUID != "" {
				t.Errorf("tray.TagUID = %q, want cleared", tray.TagUID)
			}
			if tray.Material != "" || tray.FilamentName != "" {
				t.Errorf("empty tray retains material %q / name %q", tray.Material, tray.FilamentName)
			}
		})
	}
}

func TestResolveTray(t *testing.T) {
	printers := Aggregate(fullPrinterEntities("x1c_abc"))

	p, slot, err := ResolveTray(printers, "sensor.x1c_abc_ams_2_tray_3")
	if err != nil {
		t.Fatalf("ResolveTray() error = %v", err)
	}
	if p.Prefix != "x1c_abc" {
		t.Errorf("printer.Prefix = %q", p.Prefix)
	}
	if slot.Key != "x1c_abc_ams_2_tray_3" {
		t.Errorf("slot.Key = %q", slot.Key)
	}

	_, slot, err = ResolveTray(printers, "sensor.x1c_abc_external_spool")
	if err != nil {
		t.Fatalf("ResolveTray(external) error = %v", err)
	}
	if slot.AMSIndex != ExternalAMSIndex {
		t.Errorf("slot.AMSIndex = %d, want external", slot.AMSIndex)
	}

	tests := []struct {
		name     string
		entityID string
		wantErr  error
	}{
		{name: "not a tray sensor", entityID: "sensor.x1c_abc_print_status", wantErr: ErrMalformedIdentity},
		{name: "unclassifiable", entityID: "sensor.kitchen_temperature", wantErr: ErrMalformedIdentity},
		{name: "unknown printer", entityID: "sensor.ghost_ams_1_tray_1", wantErr: ErrPrinterNotFound},
		{name: "slot not present", entityID: "sensor.x1c_abc_ams_9_tray_1", wantErr: ErrMalformedIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ResolveTray(printers, tt.entityID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ResolveTray(%q) error = %v, want %v", tt.entityID, err, tt.wantErr)
			}
		})
	}
}

func TestTrayKey(t *testing.T) {
	if got := TrayKey("x1c_abc", 1, 4); got != "x1c_abc_ams_1_tray_4" {
		t.Errorf("TrayKey() = %q", got)
	}
	if got := TrayKey("x1c_abc", ExternalAMSIndex, 0); got != "x1c_abc_external" {
		t.Errorf("TrayKey(external) = %q", got)
	}
}
