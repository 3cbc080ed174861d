package bitfield_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whispr-dev/caca/internal/bitfield"
)

// TestMSBFirstRoundTrip covers testable property 1 in spec.md §8:
// bits_to_bytes(bytes_to_bits(B)) == B for any byte sequence.
func TestMSBFirstRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		b := make([]byte, 1+r.Intn(64))
		r.Read(b)
		bf := bitfield.FromBytes(b)
		require.Equal(t, uint(len(b)*8), bf.Len())
		require.Equal(t, b, bf.ToBytes())
	}
}

func TestMSBBitOrderWithinByte(t *testing.T) {
	bf := bitfield.FromBytes([]byte{0x80}) // 1000 0000
	assert.True(t, bf.Get(0))
	for i := uint(1); i < 8; i++ {
		assert.False(t, bf.Get(i))
	}
}

func TestCountOnes(t *testing.T) {
	bf := bitfield.FromBytes([]byte{0xFF, 0x00, 0xAA})
	assert.Equal(t, uint(8+0+4), bf.CountOnes())
}

func TestResizeZeroFillsTail(t *testing.T) {
	bf := bitfield.FromBytes([]byte{0xFF})
	bf.Resize(16)
	assert.Equal(t, uint(16), bf.Len())
	for i := uint(8); i < 16; i++ {
		assert.False(t, bf.Get(i))
	}
	assert.Equal(t, []byte{0xFF, 0x00}, bf.ToBytes())
}

func TestResizeShrinkPreservesPrefix(t *testing.T) {
	bf := bitfield.FromBytes([]byte{0xF0, 0x0F})
	bf.Resize(4)
	assert.Equal(t, uint(4), bf.Len())
	assert.Equal(t, []byte{0xF0}, bf.ToBytes())
}

func TestSliceIndependentOfParent(t *testing.T) {
	bf := bitfield.FromBytes([]byte{0xFF})
	s := bf.Slice(2, 6)
	require.Equal(t, uint(4), s.Len())
	for i := uint(0); i < 4; i++ {
		assert.True(t, s.Get(i))
	}
	bf.Set(3, false)
	assert.True(t, s.Get(1), "slice must be a copy, not a view")
}

func TestCloneIndependence(t *testing.T) {
	bf := bitfield.New(8)
	bf.Set(0, true)
	clone := bf.Clone()
	clone.Set(0, false)
	assert.True(t, bf.Get(0))
	assert.False(t, clone.Get(0))
}
