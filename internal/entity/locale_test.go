package entity

import "testing"

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name     string
		entityID string
		want     Locale
	}{
		{
			name:     "english print status",
			entityID: "sensor.x1c_00m09a35_print_status",
			want:     LocaleEN,
		},
		{
			name:     "german print status",
			entityID: "sensor.x1c_00m09a35_druckstatus",
			want:     LocaleDE,
		},
		{
			name:     "french print status",
			entityID: "sensor.p1s_abcd_statut_d_impression",
			want:     LocaleFR,
		},
		{
			name:     "spanish print status",
			entityID: "sensor.a1_99_estado_de_impresion",
			want:     LocaleES,
		},
		{
			name:     "italian print status",
			entityID: "sensor.x1e_11_stato_di_stampa",
			want:     LocaleIT,
		},
		{
			name:     "disambiguated entity still detects locale",
			entityID: "sensor.x1c_00m09a35_druckstatus_2",
			want:     LocaleDE,
		},
		{
			name:     "unsupported suffix falls back to base locale",
			entityID: "sensor.x1c_00m09a35_stan_wydruku",
			want:     BaseLocale,
		},
		{
			name:     "empty identifier falls back to base locale",
			entityID: "",
			want:     BaseLocale,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectLocale(tt.entityID)
			if got != tt.want {
				t.Errorf("DetectLocale(%q) = %q, want %q", tt.entityID, got, tt.want)
			}
		})
	}
}

// TestSuffixTable_FragmentsDistinctWithinKind guards the table invariant:
// fragments within a kind must be mutually distinguishable by exact match.
func TestSuffixTable_FragmentsDistinctWithinKind(t *testing.T) {
	for kind, fragments := range SuffixTable() {
		seen := make(map[string]Locale, len(fragments))
		for _, f := range fragments {
			if prev, dup := seen[f.Text]; dup {
				t.Errorf("kind %q: fragment %q appears for both %q and %q",
					kind, f.Text, prev, f.Locale)
			}
			seen[f.Text] = f.Locale
		}
	}
}

// TestSuffixTable_BaseLocaleFirst ensures the base-locale fragment leads
// each kind's list, since DetectLocale scans in order.
func TestSuffixTable_BaseLocaleFirst(t *testing.T) {
	for kind, fragments := range SuffixTable() {
		if len(fragments) == 0 {
			t.Errorf("kind %q has no fragments", kind)
			continue
		}
		if fragments[0].Locale != BaseLocale {
			t.Errorf("kind %q: first fragment locale = %q, want %q",
				kind, fragments[0].Locale, BaseLocale)
		}
	}
}
