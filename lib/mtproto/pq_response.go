package mtproto

import (
	"github.com/go-i2p/go-obfs2/lib/tl"
	"github.com/samber/oops"
)

// PQResponse is the server's resPQ message.
type PQResponse struct {
	AuthKeyID                   int64
	MessageID                   int64
	MessageLength               uint32
	Magic                       uint32
	Nonce                       Nonce
	ServerNonce                 Nonce
	PQ                          []byte
	ServerPublicKeyFingerprints []int64
}

// ServerParams are the process-wide values every resPQ carries.
type ServerParams interface {
	ServerNonce() Nonce
	PQ() []byte
	Fingerprints() []int64
}

// GeneratePQResponse answers a request carrying nonce. It performs no I/O
// and cannot fail.
func GeneratePQResponse(nonce Nonce, params ServerParams, ids *MessageIDGenerator) PQResponse {
	r := PQResponse{
		MessageID:                   ids.Next(),
		Magic:                       ResPQConstructor,
		Nonce:                       nonce,
		ServerNonce:                 params.ServerNonce(),
		PQ:                          params.PQ(),
		ServerPublicKeyFingerprints: params.Fingerprints(),
	}
	r.MessageLength = uint32(r.bodySize())
	return r
}

func (r PQResponse) bodySize() int {
	return 4 + 2*NonceSize + tl.BytesSize(r.PQ) + tl.LongVectorSize(len(r.ServerPublicKeyFingerprints))
}

// Serialize encodes the response in field order.
func (r PQResponse) Serialize() []byte {
	b := tl.NewBuffer(envelopeSize + r.bodySize())
	b.PutInt64(r.AuthKeyID)
	b.PutInt64(r.MessageID)
	b.PutUint32(r.MessageLength)
	b.PutUint32(r.Magic)
	b.PutInt128(r.Nonce)
	b.PutInt128(r.ServerNonce)
	b.PutBytes(r.PQ)
	b.PutLongVector(r.ServerPublicKeyFingerprints)
	return b.Bytes()
}

// ParsePQResponse decodes a resPQ envelope. It is the client side of
// Serialize.
func ParsePQResponse(c *tl.Cursor) (PQResponse, error) {
	var (
		r   PQResponse
		err error
	)
	fail := func(field string, err error) (PQResponse, error) {
		return r, oops.Errorf("%w: decoding %s: %w", ErrMalformedResponse, field, err)
	}
	if r.AuthKeyID, err = c.ReadInt64(); err != nil {
		return fail("auth_key_id", err)
	}
	if r.MessageID, err = c.ReadInt64(); err != nil {
		return fail("message_id", err)
	}
	if r.MessageLength, err = c.ReadUint32(); err != nil {
		return fail("message_length", err)
	}
	if r.Magic, err = c.ReadUint32(); err != nil {
		return fail("magic", err)
	}
	if r.Magic != ResPQConstructor {
		return r, oops.Wrapf(ErrMalformedResponse, "unexpected constructor %#08x", r.Magic)
	}
	if r.Nonce, err = c.ReadInt128(); err != nil {
		return fail("nonce", err)
	}
	if r.ServerNonce, err = c.ReadInt128(); err != nil {
		return fail("server_nonce", err)
	}
	if r.PQ, err = c.ReadBytes(); err != nil {
		return fail("pq", err)
	}
	if r.ServerPublicKeyFingerprints, err = c.ReadLongVector(); err != nil {
		return fail("server_public_key_fingerprints", err)
	}
	return r, nil
}
