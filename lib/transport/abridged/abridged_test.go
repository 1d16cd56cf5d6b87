package abridged

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type xorByte byte

func (x xorByte) Decrypt(p []byte) {
	for i := range p {
		p[i] ^= byte(x)
	}
}

func (x xorByte) Encrypt(p []byte) { x.Decrypt(p) }

func TestAppendFrame_ShortForm(t *testing.T) {
	payload := bytes.Repeat([]byte{0xaa}, 12)
	frame, err := NewServerCodec().AppendFrame(nil, payload)
	require.NoError(t, err)
	assert.Equal(t, byte(3), frame[0])
	assert.Equal(t, payload, frame[1:])
}

func TestAppendFrame_MarkerOnlyOnFirstFrame(t *testing.T) {
	c := NewCodec()
	first, err := c.AppendFrame(nil, make([]byte, 4))
	require.NoError(t, err)
	assert.Equal(t, []byte{Marker, 1, 0, 0, 0, 0}, first)

	second, err := c.AppendFrame(nil, make([]byte, 4))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0, 0}, second)
}

func TestServerCodecEqualsPlainCodecWithoutMarker(t *testing.T) {
	payload := bytes.Repeat([]byte{1, 2, 3, 4}, 20)
	plain, err := NewCodec().AppendFrame(nil, payload)
	require.NoError(t, err)
	server, err := NewServerCodec().AppendFrame(nil, payload)
	require.NoError(t, err)
	assert.Equal(t, plain[1:], server)
}

func TestAppendFrame_ExtendedForm(t *testing.T) {
	payload := make([]byte, 127*UnitSize)
	frame, err := NewServerCodec().AppendFrame(nil, payload)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x7f, 127, 0, 0}, frame[:4])
	assert.Len(t, frame, 4+len(payload))
}

func TestAppendFrame_Unaligned(t *testing.T) {
	_, err := NewServerCodec().AppendFrame(nil, make([]byte, 5))
	assert.True(t, errors.Is(err, ErrUnaligned))
}

func TestReadFrame_LengthIsFourTimesUnit(t *testing.T) {
	for _, k := range []int{0, 1, 10, 126, 127, 300} {
		payload := bytes.Repeat([]byte{byte(k)}, k*UnitSize)
		var buf bytes.Buffer
		require.NoError(t, WriteFrame(&buf, NewServerCodec(), nil, payload))
		buf.WriteString("trailing")

		got, err := ReadFrame(&buf, nil, 0)
		require.NoError(t, err, "k=%d", k)
		assert.Len(t, got, 4*k)
		assert.Equal(t, "trailing", buf.String(), "k=%d must consume exactly the frame", k)
	}
}

func TestReadFrame_Decrypts(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, NewServerCodec(), xorByte(0x5c), payload))
	assert.Equal(t, byte(2)^0x5c, buf.Bytes()[0])

	got, err := ReadFrame(&buf, xorByte(0x5c), 0)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReadFrame_TooLarge(t *testing.T) {
	r := bytes.NewReader([]byte{100})
	_, err := ReadFrame(r, nil, 64)
	assert.True(t, errors.Is(err, ErrFrameTooLarge))
}

func TestReadFrame_Short(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader(nil), nil, 0)
	assert.True(t, errors.Is(err, io.EOF))

	_, err = ReadFrame(bytes.NewReader([]byte{2, 1, 2, 3}), nil, 0)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	_, err = ReadFrame(bytes.NewReader([]byte{0x7f, 1}), nil, 0)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}
