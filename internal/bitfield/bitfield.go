// Package bitfield implements the packed, MSB-first bit storage described
// in spec.md §3/§4.1. Storage is delegated to bits-and-blooms/bitset, which
// already gives a dense []uint64 word array with Set/Test/Count; BitField
// adds the MSB-first byte <-> bit convention, the tail-zero invariant, and
// resize-with-zero-fill on top of it. The teacher (stats.go:unpackBitsMSB)
// unpacks bytes into bits with exactly this MSB-first convention, one bit
// at a time from bit 7 down to bit 0 — BitField.FromBytes follows it.
package bitfield

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// BitField is a length-tagged packed bit array, MSB-first in each backing
// byte. The zero value is not usable; construct with New or FromBytes.
type BitField struct {
	bits   *bitset.BitSet
	length uint
}

// New returns a BitField of the given bit length, all bits zero.
func New(n uint) *BitField {
	return &BitField{bits: bitset.New(n), length: n}
}

// FromBytes interprets b as n = 8*len(b) bits, MSB-first within each byte:
// bit i comes from byte i/8, shifted so bit 0 of the field is the most
// significant bit of byte 0.
func FromBytes(b []byte) *BitField {
	n := uint(len(b)) * 8
	bf := New(n)
	for byteIdx, by := range b {
		if by == 0 {
			continue
		}
		base := uint(byteIdx) * 8
		for k := uint(0); k < 8; k++ {
			if (by>>(7-k))&1 == 1 {
				bf.bits.Set(base + k)
			}
		}
	}
	return bf
}

// Len returns the exact bit length.
func (bf *BitField) Len() uint { return bf.length }

// Get reads bit i. Panics on out-of-range i, matching the library's own
// bounds contract — callers that iterate [0, Len()) never trip it.
func (bf *BitField) Get(i uint) bool {
	if i >= bf.length {
		panic(fmt.Sprintf("bitfield: index %d out of range (length %d)", i, bf.length))
	}
	return bf.bits.Test(i)
}

// Set writes bit i to v.
func (bf *BitField) Set(i uint, v bool) {
	if i >= bf.length {
		panic(fmt.Sprintf("bitfield: index %d out of range (length %d)", i, bf.length))
	}
	if v {
		bf.bits.Set(i)
	} else {
		bf.bits.Clear(i)
	}
}

// CountOnes returns the population count over the whole field, using the
// backing bitset's word-parallel popcount.
func (bf *BitField) CountOnes() uint {
	return bf.bits.Count()
}

// ToBytes folds the field back to its MSB-first byte view. Bits past the
// logical length that fall in the final byte are always zero, per the
// tail-zero invariant in spec.md §3.
func (bf *BitField) ToBytes() []byte {
	nBytes := (bf.length + 7) / 8
	out := make([]byte, nBytes)
	for i := uint(0); i < bf.length; i++ {
		if bf.bits.Test(i) {
			byteIdx := i / 8
			k := i % 8
			out[byteIdx] |= 1 << (7 - k)
		}
	}
	return out
}

// Slice returns a new BitField containing bits [start, end).
func (bf *BitField) Slice(start, end uint) *BitField {
	if start > end || end > bf.length {
		panic(fmt.Sprintf("bitfield: invalid slice [%d,%d) of length %d", start, end, bf.length))
	}
	out := New(end - start)
	for i := start; i < end; i++ {
		if bf.bits.Test(i) {
			out.bits.Set(i - start)
		}
	}
	return out
}

// Resize grows or shrinks the field in place, preserving the prefix and
// zero-filling any newly added tail bits, per spec.md §4.1.
func (bf *BitField) Resize(m uint) {
	if m < bf.length {
		for i := m; i < bf.length; i++ {
			bf.bits.Clear(i)
		}
	}
	bf.length = m
}

// Clone returns a deep, independent copy.
func (bf *BitField) Clone() *BitField {
	out := New(bf.length)
	out.bits = bf.bits.Clone()
	return out
}
