package abridged

import (
	"io"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

const (
	// Marker opens a plain (non-obfuscated) abridged connection.
	Marker byte = 0xef
	// UnitSize is the number of payload bytes per length unit.
	UnitSize = 4
	// extendedLength announces a 3-byte unit count.
	extendedLength byte = 0x7f
	// MaxUnits is the largest unit count the extended form can carry.
	MaxUnits = 1<<24 - 1
)

// Decrypter is applied in place to every byte read off the wire.
type Decrypter interface {
	Decrypt(p []byte)
}

// Encrypter is applied in place to every byte written to the wire.
type Encrypter interface {
	Encrypt(p []byte)
}

// Codec packs payloads into abridged frames for one connection.
type Codec struct {
	markerSent bool
}

// NewCodec returns a codec that emits the marker before its first frame.
func NewCodec() *Codec {
	return &Codec{}
}

// NewServerCodec returns a codec for the answering side of an obfuscated
// connection, where the marker is implied by the header tag.
func NewServerCodec() *Codec {
	return &Codec{markerSent: true}
}

// AppendFrame appends the framed payload to dst.
func (c *Codec) AppendFrame(dst, payload []byte) ([]byte, error) {
	if len(payload)%UnitSize != 0 {
		return dst, oops.Wrapf(ErrUnaligned, "payload is %d bytes", len(payload))
	}
	units := len(payload) / UnitSize
	if units > MaxUnits {
		return dst, oops.Wrapf(ErrFrameTooLarge, "%d units", units)
	}
	if !c.markerSent {
		dst = append(dst, Marker)
		c.markerSent = true
	}
	if units < int(extendedLength) {
		dst = append(dst, byte(units))
	} else {
		dst = append(dst, extendedLength, byte(units), byte(units>>8), byte(units>>16))
	}
	return append(dst, payload...), nil
}

// ReadLength reads the unit count of the next frame, decrypting through d
// when it is non-nil, and returns the payload size in bytes.
func ReadLength(r io.Reader, d Decrypter) (int, error) {
	var first [1]byte
	if _, err := io.ReadFull(r, first[:]); err != nil {
		return 0, err
	}
	if d != nil {
		d.Decrypt(first[:])
	}
	if first[0] != extendedLength {
		return int(first[0]) * UnitSize, nil
	}
	var ext [3]byte
	if _, err := io.ReadFull(r, ext[:]); err != nil {
		return 0, err
	}
	if d != nil {
		d.Decrypt(ext[:])
	}
	units := int(ext[0]) | int(ext[1])<<8 | int(ext[2])<<16
	return units * UnitSize, nil
}

// ReadFrame reads one frame and returns its decrypted payload. Frames larger
// than maxSize bytes are rejected before the payload is read; maxSize <= 0
// disables the check.
func ReadFrame(r io.Reader, d Decrypter, maxSize int) ([]byte, error) {
	size, err := ReadLength(r, d)
	if err != nil {
		return nil, err
	}
	if maxSize > 0 && size > maxSize {
		return nil, oops.Wrapf(ErrFrameTooLarge, "frame of %d bytes exceeds limit %d", size, maxSize)
	}
	log.WithField("payload_length", size).Debug("reading abridged frame")
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	if d != nil {
		d.Decrypt(payload)
	}
	return payload, nil
}

// WriteFrame frames payload with c, encrypts the result through e when it is
// non-nil and writes it with a single Write call.
func WriteFrame(w io.Writer, c *Codec, e Encrypter, payload []byte) error {
	frame, err := c.AppendFrame(make([]byte, 0, len(payload)+5), payload)
	if err != nil {
		return err
	}
	if e != nil {
		e.Encrypt(frame)
	}
	_, err = w.Write(frame)
	return err
}
