package entity

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		entityID string
		want     Match
		wantErr  bool
	}{
		{
			name:     "print status base locale",
			entityID: "sensor.x1c_00m09a35_print_status",
			want: Match{
				Kind:       KindPrintStatus,
				Prefix:     "x1c_00m09a35",
				Locale:     LocaleEN,
				AMSIndex:   -1,
				TrayNumber: -1,
			},
		},
		{
			name:     "print status german",
			entityID: "sensor.x1c_00m09a35_druckstatus",
			want: Match{
				Kind:       KindPrintStatus,
				Prefix:     "x1c_00m09a35",
				Locale:     LocaleDE,
				AMSIndex:   -1,
				TrayNumber: -1,
			},
		},
		{
			name:     "print status with disambiguator",
			entityID: "sensor.x1c_00m09a35_print_status_2",
			want: Match{
				Kind:          KindPrintStatus,
				Prefix:        "x1c_00m09a35",
				Locale:        LocaleEN,
				AMSIndex:      -1,
				TrayNumber:    -1,
				Disambiguator: 2,
			},
		},
		{
			name:     "ams tray",
			entityID: "sensor.x1c_00m09a35_ams_1_tray_3",
			want: Match{
				Kind:       KindTray,
				Prefix:     "x1c_00m09a35",
				Locale:     LocaleEN,
				AMSIndex:   1,
				TrayNumber: 3,
			},
		},
		{
			name:     "ams tray french",
			entityID: "sensor.p1s_abcd_ams_2_plateau_4",
			want: Match{
				Kind:       KindTray,
				Prefix:     "p1s_abcd",
				Locale:     LocaleFR,
				AMSIndex:   2,
				TrayNumber: 4,
			},
		},
		{
			name:     "ams tray with disambiguator",
			entityID: "sensor.x1c_00m09a35_ams_1_tray_3_2",
			want: Match{
				Kind:          KindTray,
				Prefix:        "x1c_00m09a35",
				Locale:        LocaleEN,
				AMSIndex:      1,
				TrayNumber:    3,
				Disambiguator: 2,
			},
		},
		{
			name:     "two digit tray number is not a disambiguator",
			entityID: "sensor.x1c_00m09a35_ams_1_tray_12",
			want: Match{
				Kind:       KindTray,
				Prefix:     "x1c_00m09a35",
				Locale:     LocaleEN,
				AMSIndex:   1,
				TrayNumber: 12,
			},
		},
		{
			name:     "ams humidity",
			entityID: "sensor.x1c_00m09a35_ams_1_humidity",
			want: Match{
				Kind:       KindAMSHumidity,
				Prefix:     "x1c_00m09a35",
				Locale:     LocaleEN,
				AMSIndex:   1,
				TrayNumber: -1,
			},
		},
		{
			name:     "ams humidity german",
			entityID: "sensor.x1c_00m09a35_ams_1_luftfeuchtigkeit",
			want: Match{
				Kind:       KindAMSHumidity,
				Prefix:     "x1c_00m09a35",
				Locale:     LocaleDE,
				AMSIndex:   1,
				TrayNumber: -1,
			},
		},
		{
			name:     "external spool",
			entityID: "sensor.x1c_00m09a35_external_spool",
			want: Match{
				Kind:       KindExternalSpool,
				Prefix:     "x1c_00m09a35",
				Locale:     LocaleEN,
				AMSIndex:   -1,
				TrayNumber: -1,
			},
		},
		{
			name:     "external spool spanish",
			entityID: "sensor.a1mini_99_bobina_externa",
			want: Match{
				Kind:       KindExternalSpool,
				Prefix:     "a1mini_99",
				Locale:     LocaleES,
				AMSIndex:   -1,
				TrayNumber: -1,
			},
		},
		{
			name:     "current stage",
			entityID: "sensor.x1c_00m09a35_current_stage",
			want: Match{
				Kind:       KindStage,
				Prefix:     "x1c_00m09a35",
				Locale:     LocaleEN,
				AMSIndex:   -1,
				TrayNumber: -1,
			},
		},
		{
			name:     "print weight italian",
			entityID: "sensor.x1c_00m09a35_peso_di_stampa",
			want: Match{
				Kind:       KindWeight,
				Prefix:     "x1c_00m09a35",
				Locale:     LocaleIT,
				AMSIndex:   -1,
				TrayNumber: -1,
			},
		},
		{
			name:     "print progress",
			entityID: "sensor.x1c_00m09a35_print_progress",
			want: Match{
				Kind:       KindProgress,
				Prefix:     "x1c_00m09a35",
				Locale:     LocaleEN,
				AMSIndex:   -1,
				TrayNumber: -1,
			},
		},
		{
			name:     "unrelated sensor",
			entityID: "sensor.living_room_temperature",
			wantErr:  true,
		},
		{
			name:     "missing sensor domain",
			entityID: "binary_sensor.x1c_00m09a35_print_status",
			wantErr:  true,
		},
		{
			name:     "empty identifier",
			entityID: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.entityID)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("Classify(%q) expected error, got %+v", tt.entityID, got)
				}
				if !errors.Is(err, ErrNoMatch) {
					t.Errorf("Classify(%q) error = %v, want ErrNoMatch", tt.entityID, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Classify(%q) unexpected error: %v", tt.entityID, err)
			}
			if got != tt.want {
				t.Errorf("Classify(%q) = %+v, want %+v", tt.entityID, got, tt.want)
			}
		})
	}
}

func TestExtractPrefix(t *testing.T) {
	tests := []struct {
		name     string
		entityID string
		want     string
		wantErr  bool
	}{
		{
			name:     "print status",
			entityID: "sensor.x1c_00m09a35_print_status",
			want:     "x1c_00m09a35",
		},
		{
			name:     "tray entity shares prefix",
			entityID: "sensor.x1c_00m09a35_ams_1_tray_2",
			want:     "x1c_00m09a35",
		},
		{
			name:     "external spool shares prefix",
			entityID: "sensor.x1c_00m09a35_external_spool",
			want:     "x1c_00m09a35",
		},
		{
			name:     "disambiguator denotes a second device",
			entityID: "sensor.x1c_00m09a35_print_status_2",
			want:     "x1c_00m09a35_2",
		},
		{
			name:     "unclassifiable",
			entityID: "sensor.garage_door",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractPrefix(tt.entityID)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("ExtractPrefix(%q) expected error, got %q", tt.entityID, got)
				}
				return
			}

			if err != nil {
				t.Fatalf("ExtractPrefix(%q) unexpected error: %v", tt.entityID, err)
			}
			if got != tt.want {
				t.Errorf("ExtractPrefix(%q) = %q, want %q", tt.entityID, got, tt.want)
			}
		})
	}
}

// TestExtractPrefix_DisambiguatorProperties pins the grouping-key behaviour:
// appending "_2" to an entity ID yields a different prefix (a distinct
// device) but the same semantic kind.
func TestExtractPrefix_DisambiguatorProperties(t *testing.T) {
	base := "sensor.x1c_00m09a35_ams_1_tray_1"
	disambiguated := base + "_2"

	basePrefix, err := ExtractPrefix(base)
	if err != nil {
		t.Fatalf("ExtractPrefix(%q) error: %v", base, err)
	}
	disPrefix, err := ExtractPrefix(disambiguated)
	if err != nil {
		t.Fatalf("ExtractPrefix(%q) error: %v", disambiguated, err)
	}

	if basePrefix == disPrefix {
		t.Errorf("prefixes must differ for distinct devices: both %q", basePrefix)
	}

	baseMatch, err := Classify(base)
	if err != nil {
		t.Fatalf("Classify(%q) error: %v", base, err)
	}
	disMatch, err := Classify(disambiguated)
	if err != nil {
		t.Fatalf("Classify(%q) error: %v", disambiguated, err)
	}

	if baseMatch.Kind != disMatch.Kind {
		t.Errorf("kinds differ: %q vs %q", baseMatch.Kind, disMatch.Kind)
	}
	if baseMatch.TrayNumber != disMatch.TrayNumber {
		t.Errorf("tray numbers differ: %d vs %d", baseMatch.TrayNumber, disMatch.TrayNumber)
	}
}
