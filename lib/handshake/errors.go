package handshake

import (
	"errors"
	"io"

	"github.com/go-i2p/go-obfs2/lib/mtproto"
	"github.com/go-i2p/go-obfs2/lib/tl"
	"github.com/samber/oops"
)

var (
	// ErrTruncatedInput means the peer sent fewer bytes than a field needs.
	ErrTruncatedInput = tl.ErrTruncatedInput

	// ErrMalformedRequest means the request did not decode.
	ErrMalformedRequest = mtproto.ErrMalformedRequest

	// ErrIO covers transport failures other than a short stream.
	ErrIO = errors.New("handshake: i/o error")

	// ErrUnsupportedTransport is returned in strict mode for non-abridged tags.
	ErrUnsupportedTransport = errors.New("handshake: unsupported transport tag")
)

// readError classifies a failed read: a stream that ended early is
// truncated input, anything else (deadlines, resets) is an I/O error.
func readError(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return oops.Errorf("%w: reading %s: %w", ErrTruncatedInput, what, err)
	}
	return oops.Errorf("%w: reading %s: %w", ErrIO, what, err)
}

func writeError(err error) error {
	return oops.Errorf("%w: writing response: %w", ErrIO, err)
}
