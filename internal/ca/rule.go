package ca

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/whispr-dev/caca/internal/bitfield"
)

// Rule is a tagged variant over the four canonical Wolfram codes plus a
// user-supplied predicate, per spec.md §3 CARule. For 1-D neighborhoods the
// numeric value doubles as the 8-bit truth table index by the 3-bit
// (left,center,right) pattern; for 2-D neighborhoods only the identity of
// the rule matters, and §4.3's adapted predicates are used instead of the
// truth table.
type Rule uint8

const (
	RuleCustom Rule = 0
	Rule30     Rule = 30
	Rule82     Rule = 82
	Rule110    Rule = 110
	Rule150    Rule = 150
)

func (r Rule) String() string {
	switch r {
	case RuleCustom:
		return "custom"
	default:
		return fmt.Sprintf("rule%d", uint8(r))
	}
}

// ParseRule maps a CLI-facing rule name to a Rule, per spec.md §6's
// "--rule {30|82|110|150|custom:<u8>}" flag. The "custom:<u8>" form
// names a literal 1-D truth-table byte rather than the RuleCustom
// predicate variant: any nonzero Rule value runs through the same
// pattern/ruleCode lookup next1D gives Rule30/82/110/150, so a custom
// byte needs no special casing in the kernel, only here. A bare
// "custom" with no payload is rejected: the CLI has no way to supply
// the CustomFunc predicate that RuleCustom (value 0) requires, and
// that path is reachable only through the library API's
// ca.WithCustomRule, not this flag.
func ParseRule(s string) (Rule, error) {
	switch s {
	case "30":
		return Rule30, nil
	case "82":
		return Rule82, nil
	case "110":
		return Rule110, nil
	case "150":
		return Rule150, nil
	case "custom":
		return 0, fmt.Errorf("--rule custom requires a numeric payload (custom:<u8>); the bare predicate form is only available via the library API")
	}
	if payload, ok := strings.CutPrefix(s, "custom:"); ok {
		n, err := strconv.ParseUint(payload, 10, 8)
		if err != nil {
			return 0, fmt.Errorf("invalid custom rule byte %q: %w", payload, err)
		}
		if n == 0 {
			return 0, fmt.Errorf("custom rule byte must be 1-255 (0 is reserved for the predicate-based RuleCustom)")
		}
		return Rule(n), nil
	}
	return 0, fmt.Errorf("unknown rule %q, want one of 30|82|110|150|custom:<u8>", s)
}

// CustomFunc is the user predicate backing Rule Custom. It receives the
// current generation and the cell index and returns the cell's next state,
// matching spec.md §4.3's "Custom rule: call the user predicate with
// (current, i)".
type CustomFunc func(current *bitfield.BitField, i uint) bool
