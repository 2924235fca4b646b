package inventory

import "errors"

var (
	// ErrRequestFailed indicates the Spoolman API returned a non-success
	// status or the request could not be sent.
	ErrRequestFailed = errors.New("inventory: spoolman request failed")

	// ErrDecodeFailed indicates the Spoolman response body could not be
	// decoded.
	ErrDecodeFailed = errors.New("inventory: failed to decode spoolman response")

	// ErrNoMatch indicates no spool matched the given criteria.
	ErrNoMatch = errors.New("inventory: no spool matches")

	// ErrAmbiguousMatch indicates more than one spool matched a tag UID
	// that should identify exactly one spool.
	ErrAmbiguousMatch = errors.New("inventory: multiple spools match tag")

	// ErrSpoolNotFound indicates the referenced spool does not exist in
	// Spoolman.
	ErrSpoolNotFound = errors.New("inventory: spool not found")
)
