package obfs2

import (
	"bytes"
	"crypto/cipher"
	"encoding/binary"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

const (
	HeaderSize = 64
	KeySize    = 32
	IVSize     = 16

	keyOffset = 8
	ivOffset  = keyOffset + KeySize
	tagOffset = ivOffset + IVSize
	dcOffset  = tagOffset + 4
)

// Transport tags carried at header[56:60].
const (
	TagAbridged           uint32 = 0xefefefef
	TagIntermediate       uint32 = 0xeeeeeeee
	TagPaddedIntermediate uint32 = 0xdddddddd
)

// Header is the 64-byte random blob opening an obfuscated connection.
type Header [HeaderSize]byte

// KeyMaterial is the key and IV of one direction.
type KeyMaterial struct {
	Key [KeySize]byte
	IV  [IVSize]byte
}

// DeriveKeys splits the header into the client->server material, read in
// header order, and the server->client material, read from the reversed
// header.
func DeriveKeys(h Header) (clientToServer, serverToClient KeyMaterial) {
	copy(clientToServer.Key[:], h[keyOffset:ivOffset])
	copy(clientToServer.IV[:], h[ivOffset:tagOffset])

	reversed := h
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	copy(serverToClient.Key[:], reversed[keyOffset:ivOffset])
	copy(serverToClient.IV[:], reversed[ivOffset:tagOffset])
	return clientToServer, serverToClient
}

// Symmetric reports whether both directions derive the same material.
func (h Header) Symmetric() bool {
	a, b := DeriveKeys(h)
	return bytes.Equal(a.Key[:], b.Key[:]) && bytes.Equal(a.IV[:], b.IV[:])
}

// NewStream returns a fresh keystream for m, starting at counter zero.
func (m KeyMaterial) NewStream() (cipher.Stream, error) {
	return newCTR64(m.Key[:], m.IV[:])
}

// Preamble holds the fields of a decrypted header tail.
type Preamble struct {
	Tag uint32
	DC  int16
}

func parsePreamble(plain []byte) Preamble {
	return Preamble{
		Tag: binary.LittleEndian.Uint32(plain[tagOffset:dcOffset]),
		DC:  int16(binary.LittleEndian.Uint16(plain[dcOffset : dcOffset+2])),
	}
}

// Obfuscator holds the two keystreams of one connection. It is not safe
// for concurrent use; each direction advances with every byte processed.
type Obfuscator struct {
	in  cipher.Stream
	out cipher.Stream
}

// Decrypt applies the inbound keystream to p in place.
func (o *Obfuscator) Decrypt(p []byte) {
	o.in.XORKeyStream(p, p)
}

// Encrypt applies the outbound keystream to p in place.
func (o *Obfuscator) Encrypt(p []byte) {
	o.out.XORKeyStream(p, p)
}

func newObfuscator(in, out KeyMaterial) (*Obfuscator, error) {
	inStream, err := in.NewStream()
	if err != nil {
		return nil, oops.Wrapf(err, "failed to create inbound keystream")
	}
	outStream, err := out.NewStream()
	if err != nil {
		return nil, oops.Wrapf(err, "failed to create outbound keystream")
	}
	return &Obfuscator{in: inStream, out: outStream}, nil
}

// NewServerObfuscator derives the server side of a connection from the
// header as received. The header, including its cleartext prefix, is passed
// through the inbound keystream so that the next inbound byte lines up with
// the client's encryptor; the tail of that output is returned as Preamble.
func NewServerObfuscator(h Header) (*Obfuscator, Preamble, error) {
	if h.Symmetric() {
		return nil, Preamble{}, oops.Wrapf(ErrSymmetricHeader, "rejecting header")
	}
	clientToServer, serverToClient := DeriveKeys(h)
	o, err := newObfuscator(clientToServer, serverToClient)
	if err != nil {
		return nil, Preamble{}, err
	}

	plain := h
	o.Decrypt(plain[:])
	p := parsePreamble(plain[:])
	log.WithFields(logger.Fields{
		"at":  "obfs2.NewServerObfuscator",
		"tag": p.Tag,
		"dc":  p.DC,
	}).Debug("derived server keystreams")
	return o, p, nil
}
