package obfs2

import "errors"

var (
	// ErrSymmetricHeader is returned for headers whose key region reads the
	// same forwards and backwards, so both directions would share a keystream.
	ErrSymmetricHeader = errors.New("obfs2: header derives identical keys for both directions")

	// ErrHeaderGeneration is returned when the random source fails.
	ErrHeaderGeneration = errors.New("obfs2: cannot generate header")
)
