package entity

// Locale identifies the hub display language an entity was named under.
type Locale string

// Supported locales.
const (
	LocaleEN Locale = "en"
	LocaleDE Locale = "de"
	LocaleFR Locale = "fr"
	LocaleES Locale = "es"
	LocaleIT Locale = "it"
)

// BaseLocale is the fallback when no localized fragment matches.
// An unrecognised suffix is deliberately treated as the base locale rather
// than an error: locale only affects cosmetic automation text, never the
// correctness-critical identity matching.
const BaseLocale = LocaleEN

// Kind is the semantic classification of a printer sensor entity.
type Kind string

// Entity kinds, one per sensor family the hub exposes for a printer.
const (
	KindPrintStatus   Kind = "print_status"
	KindAMSHumidity   Kind = "ams_humidity"
	KindTray          Kind = "tray"
	KindExternalSpool Kind = "external_spool"
	KindStage         Kind = "stage"
	KindWeight        Kind = "weight"
	KindProgress      Kind = "progress"
)

// Fragment pairs a localized entity-name suffix with its locale.
type Fragment struct {
	Text   string
	Locale Locale
}

// SuffixTable returns the localized name fragments for each entity kind.
//
// The table is append-only static data: fragments within a kind must remain
// mutually distinguishable by exact match once anchored, and the base-locale
// fragment always comes first so DetectLocale scans it before the others.
func SuffixTable() map[Kind][]Fragment {
	return map[Kind][]Fragment{
		KindPrintStatus: {
			{Text: "print_status", Locale: LocaleEN},
			{Text: "druckstatus", Locale: LocaleDE},
			{Text: "statut_d_impression", Locale: LocaleFR},
			{Text: "estado_de_impresion", Locale: LocaleES},
			{Text: "stato_di_stampa", Locale: LocaleIT},
		},
		KindAMSHumidity: {
			{Text: "humidity", Locale: LocaleEN},
			{Text: "luftfeuchtigkeit", Locale: LocaleDE},
			{Text: "humidite", Locale: LocaleFR},
			{Text: "humedad", Locale: LocaleES},
			{Text: "umidita", Locale: LocaleIT},
		},
		KindTray: {
			{Text: "tray", Locale: LocaleEN},
			{Text: "fach", Locale: LocaleDE},
			{Text: "plateau", Locale: LocaleFR},
			{Text: "bandeja", Locale: LocaleES},
			{Text: "vassoio", Locale: LocaleIT},
		},
		KindExternalSpool: {
			{Text: "external_spool", Locale: LocaleEN},
			{Text: "externe_spule", Locale: LocaleDE},
			{Text: "bobine_externe", Locale: LocaleFR},
			{Text: "bobina_externa", Locale: LocaleES},
			{Text: "bobina_esterna", Locale: LocaleIT},
		},
		KindStage: {
			{Text: "current_stage", Locale: LocaleEN},
			{Text: "aktuelle_phase", Locale: LocaleDE},
			{Text: "etape_actuelle", Locale: LocaleFR},
			{Text: "fase_actual", Locale: LocaleES},
			{Text: "fase_corrente", Locale: LocaleIT},
		},
		KindWeight: {
			{Text: "print_weight", Locale: LocaleEN},
			{Text: "druckgewicht", Locale: LocaleDE},
			{Text: "poids_d_impression", Locale: LocaleFR},
			{Text: "peso_de_impresion", Locale: LocaleES},
			{Text: "peso_di_stampa", Locale: LocaleIT},
		},
		KindProgress: {
			{Text: "print_progress", Locale: LocaleEN},
			{Text: "druckfortschritt", Locale: LocaleDE},
			{Text: "progression_impression", Locale: LocaleFR},
			{Text: "progreso_de_impresion", Locale: LocaleES},
			{Text: "avanzamento_di_stampa", Locale: LocaleIT},
		},
	}
}
