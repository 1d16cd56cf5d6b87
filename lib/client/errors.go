package client

import "errors"

var (
	// ErrNonceMismatch is returned when the resPQ does not echo our nonce.
	ErrNonceMismatch = errors.New("resPQ nonce does not match the request")

	// ErrNoAddress is returned when Probe is called without an address.
	ErrNoAddress = errors.New("no server address given")
)
