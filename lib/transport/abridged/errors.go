package abridged

import "errors"

var (
	// ErrFrameTooLarge is returned for frames above the configured limit.
	ErrFrameTooLarge = errors.New("abridged: frame too large")

	// ErrUnaligned is returned when a payload is not a multiple of 4 bytes.
	ErrUnaligned = errors.New("abridged: payload length not a multiple of 4")
)
