package entity

import "errors"

// Domain errors for the entity package.
var (
	// ErrNoMatch is returned when an entity identifier cannot be classified
	// by any known pattern. Callers aggregating hub snapshots should treat
	// this as "not a printer sensor" and drop the entity silently.
	ErrNoMatch = errors.New("entity: no pattern matches identifier")
)
