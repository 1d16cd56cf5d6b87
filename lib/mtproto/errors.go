package mtproto

import "errors"

var (
	// ErrMalformedRequest is returned for requests that do not decode to a
	// well-formed req_pq envelope.
	ErrMalformedRequest = errors.New("mtproto: malformed request")

	// ErrMalformedResponse is returned when a resPQ cannot be decoded.
	ErrMalformedResponse = errors.New("mtproto: malformed response")
)
