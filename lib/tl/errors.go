package tl

import "errors"

var (
	// ErrTruncatedInput is returned when fewer bytes remain than a field requires.
	ErrTruncatedInput = errors.New("tl: truncated input")

	// ErrUnexpectedConstructor is returned when a boxed type carries the wrong constructor id.
	ErrUnexpectedConstructor = errors.New("tl: unexpected constructor")

	// ErrNegativeLength is returned for vectors announcing a negative item count.
	ErrNegativeLength = errors.New("tl: negative length")
)
