package printer

import "errors"

// Failure taxonomy for one print attempt. Exactly one of these classifies
// every failed Send; errors.Is distinguishes them at the API boundary.
var (
	// ErrInvalidRequest marks caller errors caught before any socket opens
	ErrInvalidRequest = errors.New("invalid print request")

	// ErrConnection marks a TCP session that could not be established
	ErrConnection = errors.New("printer unreachable")

	// ErrTransport marks a failure after the session was established
	ErrTransport = errors.New("printer transport failure")

	// ErrTimeout marks no connect or write progress within the deadline
	ErrTimeout = errors.New("printer timeout")
)
