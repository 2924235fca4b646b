// Package entity resolves raw hub sensor identifiers to canonical
// printer/tray identities.
//
// The hub names printer sensors after the user's display language, so the
// same tray sensor may be called "..._tray_1" on one install and
// "..._fach_1" on another. This package owns the localized suffix tables
// and the anchored patterns built from them, and exposes three operations:
//
//   - Classify: raw entity ID -> semantic kind plus captured identity parts
//   - DetectLocale: printer entity ID -> display locale (base locale fallback)
//   - ExtractPrefix: raw entity ID -> the printer's stable grouping prefix
//
// Adding support for a new language means adding fragments to the suffix
// table in locale.go; no other package changes.
//
// The tables are static lookup data, compiled into anchored patterns once at
// package initialisation. Nothing in this package mutates state after init.
package entity
