package obfs2

import (
	"bytes"
	"encoding/binary"

	"github.com/go-i2p/crypto/rand"
	"github.com/samber/oops"
)

// Prefixes a client header must not start with, so that the stream cannot
// be mistaken for another transport or for plain HTTP.
var reservedPrefixes = [][]byte{
	{0xef},
	[]byte("HEAD"),
	[]byte("POST"),
	[]byte("GET "),
	[]byte("OPTI"),
	{0x16, 0x03, 0x01, 0x02},
	{0xee, 0xee, 0xee, 0xee},
	{0xdd, 0xdd, 0xdd, 0xdd},
}

func acceptableHeader(h *Header) bool {
	for _, p := range reservedPrefixes {
		if bytes.HasPrefix(h[:], p) {
			return false
		}
	}
	if h[4]|h[5]|h[6]|h[7] == 0 {
		return false
	}
	return !h.Symmetric()
}

// NewClientHeader generates a random header announcing tag and dc and
// returns it as it must be written to the wire (bytes [56:64] encrypted),
// together with the client side keystreams.
func NewClientHeader(tag uint32, dc int16) (Header, *Obfuscator, error) {
	var h Header
	for {
		if _, err := rand.Read(h[:]); err != nil {
			return Header{}, nil, oops.Wrapf(ErrHeaderGeneration, "%v", err)
		}
		if acceptableHeader(&h) {
			break
		}
	}
	binary.LittleEndian.PutUint32(h[tagOffset:dcOffset], tag)
	binary.LittleEndian.PutUint16(h[dcOffset:dcOffset+2], uint16(dc))

	clientToServer, serverToClient := DeriveKeys(h)
	o, err := newObfuscator(serverToClient, clientToServer)
	if err != nil {
		return Header{}, nil, err
	}

	encrypted := h
	o.Encrypt(encrypted[:])
	wire := h
	copy(wire[tagOffset:], encrypted[tagOffset:])
	return wire, o, nil
}
