package entity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Match holds the identity parts captured while classifying an entity ID.
type Match struct {
	// Kind is the semantic entity kind that matched.
	Kind Kind

	// Prefix is the printer's stable grouping prefix, e.g. "x1c_00m09a35"
	// from "sensor.x1c_00m09a35_print_status".
	Prefix string

	// Locale is the locale of the fragment that matched.
	Locale Locale

	// AMSIndex is the AMS unit number, or -1 for kinds outside an AMS.
	AMSIndex int

	// TrayNumber is the tray position within the AMS, or -1 for non-tray kinds.
	TrayNumber int

	// Disambiguator is the trailing numeric suffix the hub appends when
	// multiple devices share a base name ("_2", "_3", ...), or 0 if absent.
	Disambiguator int
}

// kindPattern couples a compiled matcher with the fragment-to-locale lookup
// for one entity kind.
type kindPattern struct {
	kind    Kind
	re      *regexp.Regexp
	locales map[string]Locale

	// Subexpression indices resolved once at build time.
	idxPrefix int
	idxFrag   int
	idxAMS    int
	idxTray   int
	idxDis    int
}

// patterns is the ordered matcher list. AMS-scoped kinds come first because
// their identifiers embed "_ams_<n>_" and must not fall through to the
// generic prefix+fragment shapes.
var patterns = buildPatterns()

// classifyOrder fixes the order patterns are tried in.
var classifyOrder = []Kind{
	KindTray,
	KindAMSHumidity,
	KindExternalSpool,
	KindPrintStatus,
	KindStage,
	KindWeight,
	KindProgress,
}

// buildPatterns compiles one anchored pattern per kind from the suffix table.
//
// Shapes:
//   - tray:          sensor.{prefix}_ams_{n}_{fragment}_{tray}[_{dis}]
//   - ams humidity:  sensor.{prefix}_ams_{n}_{fragment}[_{dis}]
//   - everything else: sensor.{prefix}_{fragment}[_{dis}]
func buildPatterns() []kindPattern {
	table := SuffixTable()
	built := make([]kindPattern, 0, len(classifyOrder))

	for _, kind := range classifyOrder {
		fragments := table[kind]
		alternation := fragmentAlternation(fragments)

		var expr string
		switch kind {
		case KindTray:
			expr = `^sensor\.(?P<prefix>.+?)_ams_(?P<ams>\d+)_(?P<frag>` + alternation + `)_(?P<tray>\d+)(?:_(?P<dis>\d+))?$`
		case KindAMSHumidity:
			expr = `^sensor\.(?P<prefix>.+?)_ams_(?P<ams>\d+)_(?P<frag>` + alternation + `)(?:_(?P<dis>\d+))?$`
		default:
			expr = `^sensor\.(?P<prefix>.+?)_(?P<frag>` + alternation + `)(?:_(?P<dis>\d+))?$`
		}

		re := regexp.MustCompile(expr)

		locales := make(map[string]Locale, len(fragments))
		for _, f := range fragments {
			locales[f.Text] = f.Locale
		}

		built = append(built, kindPattern{
			kind:      kind,
			re:        re,
			locales:   locales,
			idxPrefix: re.SubexpIndex("prefix"),
			idxFrag:   re.SubexpIndex("frag"),
			idxAMS:    re.SubexpIndex("ams"),
			idxTray:   re.SubexpIndex("tray"),
			idxDis:    re.SubexpIndex("dis"),
		})
	}

	return built
}

// fragmentAlternation joins quoted fragments into a regexp alternation.
func fragmentAlternation(fragments []Fragment) string {
	quoted := make([]string, len(fragments))
	for i, f := range fragments {
		quoted[i] = regexp.QuoteMeta(f.Text)
	}
	return strings.Join(quoted, "|")
}

// Classify resolves a raw hub entity identifier to its semantic kind and
// captured identity parts.
//
// Parameters:
//   - entityID: Raw sensor entity ID, e.g. "sensor.x1c_00m09a35_ams_1_tray_2"
//
// Returns:
//   - Match: Kind, prefix, locale, and positional captures
//   - error: ErrNoMatch if no pattern recognises the identifier
func Classify(entityID string) (Match, error) {
	for _, p := range patterns {
		groups := p.re.FindStringSubmatch(entityID)
		if groups == nil {
			continue
		}

		match := Match{
			Kind:       p.kind,
			Prefix:     groups[p.idxPrefix],
			Locale:     p.locales[groups[p.idxFrag]],
			AMSIndex:   -1,
			TrayNumber: -1,
		}

		if p.idxAMS >= 0 && groups[p.idxAMS] != "" {
			match.AMSIndex = mustAtoi(groups[p.idxAMS])
		}
		if p.idxTray >= 0 && groups[p.idxTray] != "" {
			match.TrayNumber = mustAtoi(groups[p.idxTray])
		}
		if p.idxDis >= 0 && groups[p.idxDis] != "" {
			match.Disambiguator = mustAtoi(groups[p.idxDis])
		}

		return match, nil
	}

	return Match{}, fmt.Errorf("%w: %q", ErrNoMatch, entityID)
}

// mustAtoi converts a \d+ capture to int. The pattern guarantees digits.
func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s) //nolint:errcheck // capture group is \d+
	return n
}

// DetectLocale determines the hub display locale a printer's entities were
// named under by scanning the print-status fragment list.
//
// An unrecognised suffix resolves to BaseLocale rather than an error: a
// wrong locale only affects cosmetic text, never identity matching.
//
// Parameters:
//   - entityID: Any of the printer's entity IDs, typically the print-status
//     sensor (e.g. "sensor.x1c_00m09a35_druckstatus")
//
// Returns:
//   - Locale: Detected locale, or BaseLocale if no fragment matches
func DetectLocale(entityID string) Locale {
	for _, f := range SuffixTable()[KindPrintStatus] {
		if strings.Contains(entityID, "_"+f.Text) {
			return f.Locale
		}
	}
	return BaseLocale
}

// GroupKey returns the key the aggregator groups a printer's sensors under.
//
// The hub appends a numeric disambiguator to every entity of a second
// device sharing a base name, so the disambiguator is part of the printer's
// identity: "x1c_print_status" and "x1c_print_status_2" belong to two
// different printers ("x1c" and "x1c_2").
func (m Match) GroupKey() string {
	if m.Disambiguator == 0 {
		return m.Prefix
	}
	return fmt.Sprintf("%s_%d", m.Prefix, m.Disambiguator)
}

// ExtractPrefix strips the kind suffix from an entity identifier, recovering
// the printer's stable grouping prefix. A trailing disambiguator is folded
// into the prefix because it denotes a distinct device, not a variant name.
//
// Parameters:
//   - entityID: Raw sensor entity ID
//
// Returns:
//   - string: Printer prefix shared by all of the printer's sensors
//   - error: ErrNoMatch if the identifier cannot be classified
func ExtractPrefix(entityID string) (string, error) {
	match, err := Classify(entityID)
	if err != nil {
		return "", err
	}
	return match.GroupKey(), nil
}
