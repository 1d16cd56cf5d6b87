package mtproto

import (
	"github.com/go-i2p/go-obfs2/lib/tl"
	"github.com/samber/oops"
)

// PQRequest is the client's opening req_pq/req_pq_multi message.
type PQRequest struct {
	AuthKeyID     int64
	MessageID     int64
	MessageLength uint32
	Magic         uint32
	Nonce         Nonce
}

// NewPQRequest builds a req_pq_multi carrying nonce.
func NewPQRequest(messageID int64, nonce Nonce) PQRequest {
	return PQRequest{
		MessageID:     messageID,
		MessageLength: pqRequestBodySize,
		Magic:         ReqPQMultiConstructor,
		Nonce:         nonce,
	}
}

// ParsePQRequest decodes a request from c. The cursor must hold exactly one
// envelope; trailing bytes are rejected. Field values are not checked, see
// Validate.
func ParsePQRequest(c *tl.Cursor) (PQRequest, error) {
	var (
		r   PQRequest
		err error
	)
	if r.AuthKeyID, err = c.ReadInt64(); err != nil {
		return r, malformed(err, "auth_key_id")
	}
	if r.MessageID, err = c.ReadInt64(); err != nil {
		return r, malformed(err, "message_id")
	}
	if r.MessageLength, err = c.ReadUint32(); err != nil {
		return r, malformed(err, "message_length")
	}
	if r.Magic, err = c.ReadUint32(); err != nil {
		return r, malformed(err, "magic")
	}
	nonce, err := c.ReadInt128()
	if err != nil {
		return r, malformed(err, "nonce")
	}
	r.Nonce = nonce

	if n := c.Remaining(); n > 0 {
		return r, oops.Wrapf(ErrMalformedRequest, "%d trailing bytes after req_pq", n)
	}
	return r, nil
}

// Validate rejects a non-zero auth key id, an unknown constructor and a
// message_length that disagrees with the body.
func (r PQRequest) Validate() error {
	if r.AuthKeyID != 0 {
		return oops.Wrapf(ErrMalformedRequest, "auth_key_id must be 0, got %d", r.AuthKeyID)
	}
	if r.Magic != ReqPQMultiConstructor && r.Magic != ReqPQConstructor {
		return oops.Wrapf(ErrMalformedRequest, "unexpected constructor %#08x", r.Magic)
	}
	if r.MessageLength != pqRequestBodySize {
		return oops.Wrapf(ErrMalformedRequest, "message_length %d, body is %d bytes", r.MessageLength, pqRequestBodySize)
	}
	return nil
}

// Serialize encodes the request in field order.
func (r PQRequest) Serialize() []byte {
	b := tl.NewBuffer(PQRequestSize)
	b.PutInt64(r.AuthKeyID)
	b.PutInt64(r.MessageID)
	b.PutUint32(r.MessageLength)
	b.PutUint32(r.Magic)
	b.PutInt128(r.Nonce)
	return b.Bytes()
}

// malformed wraps a decode failure so that callers can test for either
// ErrMalformedRequest or the underlying tl error.
func malformed(err error, field string) error {
	return oops.Errorf("%w: decoding %s: %w", ErrMalformedRequest, field, err)
}
