package ca_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whispr-dev/caca/internal/bitfield"
	"github.com/whispr-dev/caca/internal/ca"
	"github.com/whispr-dev/caca/internal/vectortier"
)

// TestRule30OneStep covers scenario S3 in spec.md §8: "10000000" under
// Rule30, OneDimensional, toroidal wrap, one iteration, must produce
// "11000001".
func TestRule30OneStep(t *testing.T) {
	in := bitfield.FromBytes([]byte{0x80}) // 1000 0000
	p := ca.NewProcessor(in, ca.Rule30, ca.OneDimensional, vectortier.Scalar)
	out, err := p.Run(context.Background(), 1)
	require.NoError(t, err)

	want := []bool{true, true, false, false, false, false, false, true}
	for i, w := range want {
		assert.Equal(t, w, out.Get(uint(i)), "bit %d", i)
	}
}

// TestRule150XORLaw covers scenario S4: under Rule150, every cell's next
// state equals left XOR center XOR right, per the pattern/ruleCode
// contract in spec.md §4.3 (ruleCode 150 is binary 10010110, which is
// exactly the 3-input XOR truth table — not the 2-input left-XOR-right
// identity, which only coincides with it when center happens to be 0).
func TestRule150XORLaw(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	raw := make([]byte, 32)
	r.Read(raw)
	in := bitfield.FromBytes(raw)

	p := ca.NewProcessor(in, ca.Rule150, ca.OneDimensional, vectortier.Scalar)
	out, err := p.Run(context.Background(), 1)
	require.NoError(t, err)

	n := in.Len()
	for i := uint(0); i < n; i++ {
		left := (i + n - 1) % n
		right := (i + 1) % n
		want := in.Get(left) != in.Get(i)
		want = want != in.Get(right)
		assert.Equal(t, want, out.Get(i), "bit %d", i)
	}
}

// TestIdentityIterationZero covers testable property 4: N=0 returns the
// input unchanged, for every neighborhood.
func TestIdentityIterationZero(t *testing.T) {
	raw := []byte{0x3C, 0x99, 0x01, 0xFF}
	for _, nb := range []ca.Neighborhood{ca.OneDimensional, ca.VonNeumann, ca.Moore} {
		in := bitfield.FromBytes(raw)
		p := ca.NewProcessor(in, ca.Rule110, nb, vectortier.Scalar)
		out, err := p.Run(context.Background(), 0)
		require.NoError(t, err)
		assert.Equal(t, raw, out.ToBytes())
	}
}

// TestTierEquivalence covers testable property 2: every vector tier
// produces bit-identical output for the same input, rule, and neighborhood.
func TestTierEquivalence(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	raw := make([]byte, 64)
	r.Read(raw)

	tiers := []vectortier.Tier{
		vectortier.Scalar, vectortier.SSE2, vectortier.AVX,
		vectortier.AVX2, vectortier.AVX512F, vectortier.AVX512VNNI, vectortier.NEON,
	}
	rules := []ca.Rule{ca.Rule30, ca.Rule82, ca.Rule110, ca.Rule150}
	neighborhoods := []ca.Neighborhood{ca.OneDimensional, ca.VonNeumann, ca.Moore}

	for _, rule := range rules {
		for _, nb := range neighborhoods {
			var reference []byte
			for _, tier := range tiers {
				in := bitfield.FromBytes(raw)
				p := ca.NewProcessor(in, rule, nb, tier)
				out, err := p.Run(context.Background(), 3)
				require.NoError(t, err)
				if reference == nil {
					reference = out.ToBytes()
					continue
				}
				assert.Equal(t, reference, out.ToBytes(),
					"tier %v diverged for rule=%v neighborhood=%v", tier, rule, nb)
			}
		}
	}
}

// TestDeterminism covers testable property 3: repeated runs over the same
// input/config produce the same output.
func TestDeterminism(t *testing.T) {
	raw := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02, 0x03, 0x04}
	var first []byte
	for i := 0; i < 5; i++ {
		in := bitfield.FromBytes(raw)
		p := ca.NewProcessor(in, ca.Rule110, ca.Moore, vectortier.Scalar, ca.WithThreads(4))
		out, err := p.Run(context.Background(), 7)
		require.NoError(t, err)
		if first == nil {
			first = out.ToBytes()
			continue
		}
		assert.Equal(t, first, out.ToBytes())
	}
}

// TestCancellationReturnsPartialResult covers the Cancelled failure mode:
// a context cancelled before Run is called returns the unmodified input
// wrapped in a Cancelled error rather than panicking or blocking forever.
func TestCancellationReturnsPartialResult(t *testing.T) {
	raw := []byte{0xFF, 0x00}
	in := bitfield.FromBytes(raw)
	p := ca.NewProcessor(in, ca.Rule30, ca.OneDimensional, vectortier.Scalar)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := p.Run(ctx, 10)
	require.Error(t, err)
	assert.Equal(t, raw, out.ToBytes())
}

// TestCustomRule exercises the RuleCustom predicate path.
func TestCustomRule(t *testing.T) {
	raw := []byte{0x00}
	in := bitfield.FromBytes(raw)
	always := func(current *bitfield.BitField, i uint) bool { return true }
	p := ca.NewProcessor(in, ca.RuleCustom, ca.OneDimensional, vectortier.Scalar, ca.WithCustomRule(always))
	out, err := p.Run(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint(8), out.CountOnes())
}

// TestParseRuleCustomByte covers spec.md §6's "custom:<u8>" CLI form: a
// numeric payload parses to that literal Rule value, not RuleCustom.
func TestParseRuleCustomByte(t *testing.T) {
	r, err := ca.ParseRule("custom:45")
	require.NoError(t, err)
	assert.Equal(t, ca.Rule(45), r)
	assert.NotEqual(t, ca.RuleCustom, r)
}

// TestParseRuleBareCustomRejected covers the CLI having no way to supply
// the RuleCustom predicate: a bare "custom" token must be a ConfigError,
// not silently succeed into a Rule whose customFunc is nil.
func TestParseRuleBareCustomRejected(t *testing.T) {
	_, err := ca.ParseRule("custom")
	assert.Error(t, err)
}

func TestParseRuleCustomZeroRejected(t *testing.T) {
	_, err := ca.ParseRule("custom:0")
	assert.Error(t, err)
}

func TestRuleNameStable(t *testing.T) {
	assert.Equal(t, "Rule 30 (Chaotic)", ca.RuleName(ca.Rule30))
	assert.Equal(t, "Rule 150 (Linear)", ca.RuleName(ca.Rule150))
	assert.Equal(t, "Custom Rule", ca.RuleName(ca.RuleCustom))
}
