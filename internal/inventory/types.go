package inventory

// Filament describes the filament wound on a spool as Spoolman reports
// it.
type Filament struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Material string  `json:"material"`
	ColorHex string  `json:"color_hex,omitempty"`
	Weight   float64 `json:"weight,omitempty"`
}

// Spool is a single Spoolman inventory record. Extra holds
// bridge-specific state keyed by field name; values are JSON-encoded
// strings as Spoolman stores them.
type Spool struct {
	ID              int               `json:"id"`
	Filament        Filament          `json:"filament"`
	RemainingWeight float64           `json:"remaining_weight"`
	UsedWeight      float64           `json:"used_weight"`
	Archived        bool              `json:"archived"`
	Extra           map[string]string `json:"extra"`
}

// Extra field names used by the bridge.
const (
	ExtraTagUID     = "tag_uid"
	ExtraActiveTray = "active_tray"
)

// TagUID returns the decoded tag_uid extra, or an empty string when the
// spool carries none.
func (s Spool) TagUID() string {
	return decodeExtra(s.Extra[ExtraTagUID])
}

// ActiveTray returns the decoded active_tray extra, or an empty string
// when the spool is not assigned to any tray.
func (s Spool) ActiveTray() string {
	return decodeExtra(s.Extra[ExtraActiveTray])
}
