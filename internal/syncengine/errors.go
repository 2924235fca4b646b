package syncengine

import "errors"

var (
	// ErrUpstreamFailure indicates the hub or Spoolman could not be
	// reached or rejected a request while handling an event.
	ErrUpstreamFailure = errors.New("syncengine: upstream request failed")

	// ErrInvalidInput indicates an event that cannot be processed as
	// given, such as a manual assignment without a tray key.
	ErrInvalidInput = errors.New("syncengine: invalid input")
)
