package ca

import (
	"github.com/whispr-dev/caca/internal/bitfield"
	"github.com/whispr-dev/caca/internal/vectortier"
)

// config bundles everything a kernel invocation needs to compute a single
// cell's next state: the rule, its custom predicate (if any), the
// neighborhood, and the 2-D grid dimensions (ignored for OneDimensional).
type config struct {
	rule         Rule
	customFunc   CustomFunc
	neighborhood Neighborhood
	width        uint
	height       uint
}

// next computes the next state of cell i given the current generation.
// This is the pure per-cell function spec.md §4.3 calls CAKernel; it is
// tier-agnostic — every vector tier in this package ultimately evaluates
// the same predicate, so tier equivalence (spec.md §8 property 2) holds by
// construction rather than by coincidence.
func (c config) next(current *bitfield.BitField, i uint) bool {
	switch c.neighborhood {
	case OneDimensional:
		return c.next1D(current, i)
	case VonNeumann:
		return c.nextVonNeumann(current, i)
	case Moore:
		return c.nextMoore(current, i)
	default:
		return current.Get(i)
	}
}

func (c config) next1D(current *bitfield.BitField, i uint) bool {
	if c.rule == RuleCustom {
		return c.customFunc(current, i)
	}
	n := current.Len()
	left := wrapDec(i, n)
	right := wrapInc(i, n)

	pattern := uint8(0)
	if current.Get(left) {
		pattern |= 4
	}
	if current.Get(i) {
		pattern |= 2
	}
	if current.Get(right) {
		pattern |= 1
	}
	return (uint8(c.rule)>>pattern)&1 == 1
}

func wrapDec(i, n uint) uint {
	if i == 0 {
		return n - 1
	}
	return i - 1
}

func wrapInc(i, n uint) uint {
	if i == n-1 {
		return 0
	}
	return i + 1
}

// coords returns the (x, y) grid position of linear index i.
func (c config) coords(i uint) (x, y uint) {
	return i % c.width, i / c.width
}

// getGrid reads the cell at grid position (x, y), treating any position
// outside the field's logical length (including padding cells beyond n
// within the width*height rectangle) as 0, per spec.md §4.3's VonNeumann
// and Moore boundary policy.
func (c config) getGrid(current *bitfield.BitField, x, y int) bool {
	if x < 0 || y < 0 || uint(x) >= c.width || uint(y) >= c.height {
		return false
	}
	idx := uint(y)*c.width + uint(x)
	if idx >= current.Len() {
		return false
	}
	return current.Get(idx)
}

func (c config) nextVonNeumann(current *bitfield.BitField, i uint) bool {
	if c.rule == RuleCustom {
		return c.customFunc(current, i)
	}
	x, y := c.coords(i)
	xi, yi := int(x), int(y)
	k := 0
	if c.getGrid(current, xi, yi-1) {
		k++
	}
	if c.getGrid(current, xi+1, yi) {
		k++
	}
	if c.getGrid(current, xi, yi+1) {
		k++
	}
	if c.getGrid(current, xi-1, yi) {
		k++
	}
	alive := current.Get(i)
	return vonNeumannPredicate(c.rule, alive, k)
}

func vonNeumannPredicate(rule Rule, alive bool, k int) bool {
	switch rule {
	case Rule30:
		return (alive && k < 2) || (!alive && k >= 2)
	case Rule82:
		return (alive && k < 3) || (!alive && k == 2)
	case Rule110:
		return (alive && k != 4) || (!alive && k >= 1)
	case Rule150:
		return k%2 == 1
	default:
		return alive
	}
}

func (c config) nextMoore(current *bitfield.BitField, i uint) bool {
	if c.rule == RuleCustom {
		return c.customFunc(current, i)
	}
	x, y := c.coords(i)
	xi, yi := int(x), int(y)
	k := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if c.getGrid(current, xi+dx, yi+dy) {
				k++
			}
		}
	}
	alive := current.Get(i)
	return moorePredicate(c.rule, alive, k)
}

func moorePredicate(rule Rule, alive bool, k int) bool {
	switch rule {
	case Rule30:
		return k == 3 || (alive && k == 2)
	case Rule82:
		return (!alive && k == 3) || (alive && (k == 2 || k == 3))
	case Rule110:
		return (alive && k < 4) || (!alive && (k == 3 || k == 6))
	case Rule150:
		return k%2 == 1
	default:
		return alive
	}
}

// applyRange applies the kernel to every cell in [start, end), writing into
// dst, at the given vector tier. Every tier currently evaluates the same
// config.next predicate — matching the original source's own SIMD tiers,
// which are thin wrappers that "fall back to the scalar version" (see
// ca/cellular_automata.cpp's vectorize<__m128i|__m256i|__m512i|uint8x16_t>
// specializations) — so bit-for-bit tier equivalence (spec.md §8 property 2)
// holds trivially rather than needing to be proven per tier. The tier
// parameter is threaded through so a future assembly-backed tier can slot
// in here without touching callers, and without reintroducing a
// per-rule algebraic shortcut that would need re-verifying against the
// generic pattern lookup at every tier.
func applyRange(tier vectortier.Tier, c config, src, dst *bitfield.BitField, start, end uint) {
	_ = tier // reserved for a future genuinely vectorized tier
	for i := start; i < end; i++ {
		dst.Set(i, c.next(src, i))
	}
}
