// Package inventory provides the Spoolman client and the spool matching
// logic that links physical filament trays to inventory records.
//
// Spoolman stores bridge-specific state in each spool's extra fields.
// Extra values arrive JSON-encoded (a tag UID of A1B2C3 is stored as the
// string "\"A1B2C3\""), so the matcher compares against the encoded form
// rather than the raw value.
//
// Two matching strategies are supported:
//
//   - By tag: an RFID tag UID read from a tray is compared against the
//     tag_uid extra of every spool. A match requires exactly one hit.
//   - By tray claim: a tray key (printer prefix plus slot identity) is
//     compared against the active_tray extra, which records which tray a
//     spool is currently loaded in.
//
// Empty and "unknown" tag values never match anything. Bambu AMS units
// report "unknown" for trays whose tag could not be read, and treating
// that as a real identifier would collapse every unreadable tray onto a
// single spool.
package inventory
