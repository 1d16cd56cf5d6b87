package config

import (
	"encoding/hex"
	"strings"

	"github.com/go-i2p/crypto/rand"
	"github.com/go-i2p/go-obfs2/lib/mtproto"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

const randomNonce = "random"

// Params are the protocol constants shared by every connection. A Params
// value never changes after NewParams returns; accessors hand out copies.
type Params struct {
	serverNonce  mtproto.Nonce
	pq           []byte
	fingerprints []int64
}

var _ mtproto.ServerParams = (*Params)(nil)

// NewParams parses and checks the protocol section.
func NewParams(pc ProtocolConfig) (*Params, error) {
	p := &Params{}

	nonce := strings.TrimSpace(pc.ServerNonce)
	if strings.EqualFold(nonce, randomNonce) {
		if _, err := rand.Read(p.serverNonce[:]); err != nil {
			return nil, oops.Wrapf(err, "failed to generate server nonce")
		}
	} else {
		raw, err := hex.DecodeString(nonce)
		if err != nil || len(raw) != mtproto.NonceSize {
			return nil, oops.Wrapf(ErrInvalidServerNonce, "got %q", pc.ServerNonce)
		}
		copy(p.serverNonce[:], raw)
	}

	pq, err := hex.DecodeString(strings.TrimSpace(pc.PQ))
	if err != nil || len(pq) == 0 {
		return nil, oops.Wrapf(ErrInvalidPQ, "got %q", pc.PQ)
	}
	p.pq = pq

	if len(pc.Fingerprints) == 0 {
		return nil, ErrNoFingerprints
	}
	p.fingerprints = append([]int64(nil), pc.Fingerprints...)

	log.WithFields(logger.Fields{
		"pq_length":    len(p.pq),
		"fingerprints": len(p.fingerprints),
		"random_nonce": strings.EqualFold(nonce, randomNonce),
	}).Debug("protocol parameters loaded")
	return p, nil
}

// ServerNonce returns the nonce sent in every resPQ.
func (p *Params) ServerNonce() mtproto.Nonce {
	return p.serverNonce
}

// PQ returns a copy of the pq bytes.
func (p *Params) PQ() []byte {
	return append([]byte(nil), p.pq...)
}

// Fingerprints returns a copy of the key fingerprints.
func (p *Params) Fingerprints() []int64 {
	return append([]int64(nil), p.fingerprints...)
}
