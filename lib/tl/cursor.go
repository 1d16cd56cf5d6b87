package tl

import (
	"encoding/binary"

	"github.com/samber/oops"
)

// VectorConstructor is the constructor id of the boxed TL vector type.
const VectorConstructor uint32 = 0x1cb5c415

// Int128Size is the size of a raw TL int128 (nonces).
const Int128Size = 16

// longStringMarker marks a byte string whose length does not fit in one byte.
const longStringMarker = 0xfe

// Cursor reads TL primitives from a byte slice, front to back.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor returns a Cursor positioned at the start of buf. buf is not copied.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the number of bytes consumed so far.
func (c *Cursor) Pos() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

func (c *Cursor) next(n int, what string) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, oops.Wrapf(ErrTruncatedInput, "reading %s: need %d bytes at offset %d, have %d", what, n, c.pos, c.Remaining())
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadUint32 reads a little-endian uint32.
func (c *Cursor) ReadUint32() (uint32, error) {
	b, err := c.next(4, "uint32")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadInt32 reads a little-endian int32.
func (c *Cursor) ReadInt32() (int32, error) {
	v, err := c.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads a little-endian uint64.
func (c *Cursor) ReadUint64() (uint64, error) {
	b, err := c.next(8, "uint64")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadInt64 reads a little-endian int64.
func (c *Cursor) ReadInt64() (int64, error) {
	v, err := c.ReadUint64()
	return int64(v), err
}

// ReadRaw returns a copy of the next n bytes.
func (c *Cursor) ReadRaw(n int) ([]byte, error) {
	b, err := c.next(n, "raw bytes")
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadInt128 reads 16 bytes verbatim.
func (c *Cursor) ReadInt128() (v [Int128Size]byte, err error) {
	b, err := c.next(Int128Size, "int128")
	if err != nil {
		return v, err
	}
	copy(v[:], b)
	return v, nil
}

// ReadBytes reads a TL byte string: a one byte length (or 0xfe followed by a
// three byte little-endian length), the data, then padding up to a multiple
// of four counted from the start of the string.
func (c *Cursor) ReadBytes() ([]byte, error) {
	first, err := c.next(1, "bytes length")
	if err != nil {
		return nil, err
	}
	length := int(first[0])
	header := 1
	if first[0] == longStringMarker {
		ext, err := c.next(3, "bytes extended length")
		if err != nil {
			return nil, err
		}
		length = int(ext[0]) | int(ext[1])<<8 | int(ext[2])<<16
		header = 4
	}
	data, err := c.ReadRaw(length)
	if err != nil {
		return nil, err
	}
	if _, err := c.next(paddingFor(header+length), "bytes padding"); err != nil {
		return nil, err
	}
	return data, nil
}

// ReadLongVector reads a boxed vector<long>.
func (c *Cursor) ReadLongVector() ([]int64, error) {
	ctor, err := c.ReadUint32()
	if err != nil {
		return nil, err
	}
	if ctor != VectorConstructor {
		return nil, oops.Wrapf(ErrUnexpectedConstructor, "vector: got %#08x", ctor)
	}
	count, err := c.ReadInt32()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, oops.Wrapf(ErrNegativeLength, "vector: count %d", count)
	}
	// Bound the allocation by what the buffer can actually hold.
	if int(count) > c.Remaining()/8 {
		return nil, oops.Wrapf(ErrTruncatedInput, "vector: %d items, %d bytes left", count, c.Remaining())
	}
	out := make([]int64, count)
	for i := range out {
		if out[i], err = c.ReadInt64(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func paddingFor(n int) int {
	return (4 - n%4) % 4
}
