package obfs2

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"

	"github.com/samber/oops"
)

// ctr64 is AES in counter mode where only the low 64 bits of the counter
// block are incremented, big-endian, wrapping without carry into the high
// half. crypto/cipher's CTR carries across the full block, which diverges
// once the low half overflows.
type ctr64 struct {
	block   cipher.Block
	counter [aes.BlockSize]byte
	stream  [aes.BlockSize]byte
	used    int
}

var _ cipher.Stream = (*ctr64)(nil)

func newCTR64(key, iv []byte) (*ctr64, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, oops.Wrapf(err, "failed to create AES cipher")
	}
	if len(iv) != aes.BlockSize {
		return nil, oops.Errorf("iv must be %d bytes, got %d", aes.BlockSize, len(iv))
	}
	c := &ctr64{block: block, used: aes.BlockSize}
	copy(c.counter[:], iv)
	return c, nil
}

func (c *ctr64) refill() {
	c.block.Encrypt(c.stream[:], c.counter[:])
	low := binary.BigEndian.Uint64(c.counter[8:])
	binary.BigEndian.PutUint64(c.counter[8:], low+1)
	c.used = 0
}

// XORKeyStream implements cipher.Stream. dst and src may overlap exactly.
func (c *ctr64) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("obfs2: output smaller than input")
	}
	for i := range src {
		if c.used == aes.BlockSize {
			c.refill()
		}
		dst[i] = src[i] ^ c.stream[c.used]
		c.used++
	}
}
