package printer

import "errors"

var (
	// ErrMalformedIdentity indicates an entity identifier that was
	// expected to name a tray slot but does not resolve to one.
	ErrMalformedIdentity = errors.New("printer: identifier does not name a tray slot")

	// ErrPrinterNotFound indicates no aggregated printer carries the
	// given prefix.
	ErrPrinterNotFound = errors.New("printer: no printer with prefix")
)
