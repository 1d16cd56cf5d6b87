package tl

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegersAreLittleEndian(t *testing.T) {
	var b Buffer
	b.PutInt64(0x0102030405060708)
	b.PutUint32(0xaabbccdd)

	assert.Equal(t, []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, 0xdd, 0xcc, 0xbb, 0xaa}, b.Bytes())

	c := NewCursor(b.Bytes())
	i64, err := c.ReadInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(0x0102030405060708), i64)
	u32, err := c.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xaabbccdd), u32)
	assert.Zero(t, c.Remaining())
}

func TestNegativeIntegers(t *testing.T) {
	var b Buffer
	b.PutInt64(-2)
	b.PutInt32(-1)

	c := NewCursor(b.Bytes())
	i64, err := c.ReadInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(-2), i64)
	i32, err := c.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-1), i32)
}

func TestTruncatedInput(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		read func(*Cursor) error
	}{
		{"uint32", []byte{1, 2, 3}, func(c *Cursor) error { _, err := c.ReadUint32(); return err }},
		{"int64", []byte{1, 2, 3, 4, 5, 6, 7}, func(c *Cursor) error { _, err := c.ReadInt64(); return err }},
		{"int128", make([]byte, 15), func(c *Cursor) error { _, err := c.ReadInt128(); return err }},
		{"bytes length", nil, func(c *Cursor) error { _, err := c.ReadBytes(); return err }},
		{"bytes data", []byte{5, 1, 2}, func(c *Cursor) error { _, err := c.ReadBytes(); return err }},
		{"bytes padding", []byte{4, 1, 2, 3, 4}, func(c *Cursor) error { _, err := c.ReadBytes(); return err }},
		{"vector items", []byte{0x15, 0xc4, 0xb5, 0x1c, 2, 0, 0, 0, 1, 2, 3, 4, 5, 6, 7, 8}, func(c *Cursor) error { _, err := c.ReadLongVector(); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(NewCursor(tt.buf))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrTruncatedInput), "got %v", err)
		})
	}
}

func TestFailedReadDoesNotAdvance(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3})
	_, err := c.ReadUint64()
	require.Error(t, err)
	assert.Equal(t, 0, c.Pos())
	assert.Equal(t, 3, c.Remaining())
}

func TestBytesPadding(t *testing.T) {
	tests := []struct {
		length int
		size   int
	}{
		{0, 4},
		{3, 4},
		{4, 8},
		{8, 12},
		{253, 256},
		{254, 260},
		{1000, 1004},
	}
	for _, tt := range tests {
		data := bytes.Repeat([]byte{0x5a}, tt.length)
		var b Buffer
		b.PutBytes(data)
		assert.Equal(t, tt.size, b.Len(), "length %d", tt.length)
		assert.Equal(t, tt.size, BytesSize(data), "length %d", tt.length)
		assert.Zero(t, b.Len()%4)

		got, err := NewCursor(b.Bytes()).ReadBytes()
		require.NoError(t, err)
		assert.Equal(t, data, got)
	}
}

func TestLongBytesHeader(t *testing.T) {
	var b Buffer
	b.PutBytes(make([]byte, 300))
	assert.Equal(t, []byte{0xfe, 0x2c, 0x01, 0x00}, b.Bytes()[:4])
}

func TestPQBytesLayout(t *testing.T) {
	var b Buffer
	b.PutBytes([]byte{0x81, 0xf9, 0x08, 0x1a, 0x94, 0x48, 0xed, 0x17})
	assert.Equal(t, []byte{0x08, 0x81, 0xf9, 0x08, 0x1a, 0x94, 0x48, 0xed, 0x17, 0x00, 0x00, 0x00}, b.Bytes())
}

func TestLongVector(t *testing.T) {
	in := []int64{-3414540481677951611, 42}
	var b Buffer
	b.PutLongVector(in)
	assert.Equal(t, LongVectorSize(len(in)), b.Len())
	assert.Equal(t, []byte{0x15, 0xc4, 0xb5, 0x1c, 0x02, 0x00, 0x00, 0x00}, b.Bytes()[:8])

	out, err := NewCursor(b.Bytes()).ReadLongVector()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLongVectorWrongConstructor(t *testing.T) {
	var b Buffer
	b.PutUint32(0xdeadbeef)
	b.PutInt32(0)
	_, err := NewCursor(b.Bytes()).ReadLongVector()
	assert.True(t, errors.Is(err, ErrUnexpectedConstructor))
}

func TestReadRawCopies(t *testing.T) {
	src := []byte{1, 2, 3, 4}
	got, err := NewCursor(src).ReadRaw(4)
	require.NoError(t, err)
	src[0] = 9
	assert.Equal(t, byte(1), got[0])
}

func TestPutRawReadRaw(t *testing.T) {
	var b Buffer
	b.PutRaw([]byte{0xca, 0xfe})
	b.PutRaw(nil)
	b.PutUint32(7)
	require.Equal(t, 6, b.Len())

	c := NewCursor(b.Bytes())
	raw, err := c.ReadRaw(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xca, 0xfe}, raw)
	v, err := c.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(7), v)
	assert.Zero(t, c.Remaining())
}
