package config

import "errors"

var (
	// ErrInvalidListenAddress is returned for an empty server.listen_address.
	ErrInvalidListenAddress = errors.New("config: listen address must not be empty")

	// ErrInvalidServerNonce is returned when protocol.server_nonce does not parse.
	ErrInvalidServerNonce = errors.New("config: server nonce must be 32 hex characters or \"random\"")

	// ErrInvalidPQ is returned when protocol.pq is empty or not hex.
	ErrInvalidPQ = errors.New("config: pq must be a non-empty hex string")

	// ErrNoFingerprints is returned when protocol.fingerprints is empty.
	ErrNoFingerprints = errors.New("config: at least one server key fingerprint is required")
)
