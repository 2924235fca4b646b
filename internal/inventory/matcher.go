package inventory

import (
	"fmt"
	"strings"
)

// unknownTag is what Bambu AMS units report when a tray's RFID tag could
// not be read. It identifies nothing.
const unknownTag = "unknown"

// MatchByTag finds the single spool whose tag_uid extra matches the
// given tag. The comparison is case-insensitive because tag readers and
// label printers disagree on hex casing.
//
// Parameters:
//   - spools: inventory records to search (archived records are skipped).
//   - tagUID: raw tag value read from the tray.
//
// Returns:
//   - Spool: the matched record.
//   - error: ErrNoMatch when zero spools match or the tag is empty or
//     "unknown"; ErrAmbiguousMatch when more than one spool matches.
func MatchByTag(spools []Spool, tagUID string) (Spool, error) {
	if tagUID == "" || strings.EqualFold(tagUID, unknownTag) {
		return Spool{}, fmt.Errorf("%w: tag %q identifies nothing", ErrNoMatch, tagUID)
	}

	var (
		matched Spool
		count   int
	)

	for _, spool := range spools {
		if spool.Archived {
			continue
		}
		if strings.EqualFold(spool.TagUID(), tagUID) {
			matched = spool
			count++
		}
	}

	switch count {
	case 0:
		return Spool{}, fmt.Errorf("%w: tag %q", ErrNoMatch, tagUID)
	case 1:
		return matched, nil
	default:
		return Spool{}, fmt.Errorf("%w: tag %q matches %d spools", ErrAmbiguousMatch, tagUID, count)
	}
}

// MatchByTrayClaim finds the spool currently claiming the given tray via
// its active_tray extra.
//
// A tray claim is nominally unique, but Spoolman does not enforce that
// and a crashed bridge or manual edit can leave several spools claiming
// one tray. Rather than refusing to deduct usage until someone cleans
// up, the lowest spool ID wins deterministically; the stale claims are
// cleared the next time any spool is assigned to the tray.
//
// Returns:
//   - Spool: the claiming record.
//   - error: ErrNoMatch when no spool claims the tray or the key is
//     empty.
func MatchByTrayClaim(spools []Spool, trayKey string) (Spool, error) {
	claimants := Claimants(spools, trayKey)
	if len(claimants) == 0 {
		return Spool{}, fmt.Errorf("%w: tray %q", ErrNoMatch, trayKey)
	}

	best := claimants[0]
	for _, spool := range claimants[1:] {
		if spool.ID < best.ID {
			best = spool
		}
	}

	return best, nil
}

// Claimants returns every non-archived spool whose active_tray extra
// matches the given tray key. More than one claimant means the inventory
// has drifted; callers clearing assignments use the full list.
func Claimants(spools []Spool, trayKey string) []Spool {
	if trayKey == "" {
		return nil
	}

	var claimants []Spool
	for _, spool := range spools {
		if spool.Archived {
			continue
		}
		if spool.ActiveTray() == trayKey {
			claimants = append(claimants, spool)
		}
	}

	return claimants
}
