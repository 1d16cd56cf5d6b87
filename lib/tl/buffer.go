package tl

import "encoding/binary"

// maxShortString is the longest byte string encoded with a one byte length.
const maxShortString = 253

// Buffer is a growable TL encoder. The zero value is ready to use.
type Buffer struct {
	buf []byte
}

// NewBuffer returns a Buffer with room for size bytes.
func NewBuffer(size int) *Buffer {
	return &Buffer{buf: make([]byte, 0, size)}
}

// Bytes returns the encoded bytes. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Len returns the number of encoded bytes.
func (b *Buffer) Len() int {
	return len(b.buf)
}

// PutUint32 appends v little-endian.
func (b *Buffer) PutUint32(v uint32) {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, v)
}

// PutInt32 appends v little-endian.
func (b *Buffer) PutInt32(v int32) {
	b.PutUint32(uint32(v))
}

// PutUint64 appends v little-endian.
func (b *Buffer) PutUint64(v uint64) {
	b.buf = binary.LittleEndian.AppendUint64(b.buf, v)
}

// PutInt64 appends v little-endian.
func (b *Buffer) PutInt64(v int64) {
	b.PutUint64(uint64(v))
}

// PutRaw appends p verbatim.
func (b *Buffer) PutRaw(p []byte) {
	b.buf = append(b.buf, p...)
}

// PutInt128 appends the 16 bytes of v verbatim.
func (b *Buffer) PutInt128(v [Int128Size]byte) {
	b.PutRaw(v[:])
}

// PutBytes appends p as a TL byte string, padded to a 4 byte boundary.
func (b *Buffer) PutBytes(p []byte) {
	header := 1
	if len(p) <= maxShortString {
		b.buf = append(b.buf, byte(len(p)))
	} else {
		header = 4
		b.buf = append(b.buf, longStringMarker, byte(len(p)), byte(len(p)>>8), byte(len(p)>>16))
	}
	b.PutRaw(p)
	for i := paddingFor(header + len(p)); i > 0; i-- {
		b.buf = append(b.buf, 0)
	}
}

// PutLongVector appends v as a boxed vector<long>.
func (b *Buffer) PutLongVector(v []int64) {
	b.PutUint32(VectorConstructor)
	b.PutInt32(int32(len(v)))
	for _, x := range v {
		b.PutInt64(x)
	}
}

// BytesSize returns the encoded size of p as a TL byte string.
func BytesSize(p []byte) int {
	header := 1
	if len(p) > maxShortString {
		header = 4
	}
	return header + len(p) + paddingFor(header+len(p))
}

// LongVectorSize returns the encoded size of a boxed vector<long> of n items.
func LongVectorSize(n int) int {
	return 8 + 8*n
}
