package hub

import "errors"

// Domain errors for the hub package.
var (
	// ErrRequestFailed is returned when a hub API call fails at the
	// transport level or returns a non-success status.
	ErrRequestFailed = errors.New("hub: request failed")

	// ErrUnauthorised is returned when the hub rejects the bearer token.
	ErrUnauthorised = errors.New("hub: unauthorised")

	// ErrDecodeFailed is returned when a hub response cannot be decoded.
	ErrDecodeFailed = errors.New("hub: decoding response failed")
)
