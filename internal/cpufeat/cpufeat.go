// Package cpufeat is the concrete CPU-feature detector collaborator. It is
// the only package in this module allowed to import klauspost/cpuid; the
// core (internal/ca) only ever sees the opaque vectortier.Tier this package
// produces, never the detector itself, matching the "no hidden globals"
// redesign note in SPEC_FULL.md.
package cpufeat

import (
	"github.com/klauspost/cpuid/v2"

	"github.com/whispr-dev/caca/internal/vectortier"
)

// Detector queries klauspost/cpuid/v2 for the running CPU's feature set.
// It holds no state and is safe to reuse, but callers should call Detect
// exactly once at program start and pass the resulting Tier down through
// configuration rather than re-detecting per call.
type Detector struct{}

// Detect implements vectortier.Detector, mirroring the priority order the
// original CPUFeatures::getHighestSIMDSupport used: highest AVX-512
// extension first, falling back through AVX2/AVX/SSE2/NEON to Scalar.
func (Detector) Detect() vectortier.Tier {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512VNNI):
		return vectortier.AVX512VNNI
	case cpuid.CPU.Supports(cpuid.AVX512F):
		return vectortier.AVX512F
	case cpuid.CPU.Supports(cpuid.AVX2):
		return vectortier.AVX2
	case cpuid.CPU.Supports(cpuid.AVX):
		return vectortier.AVX
	case cpuid.CPU.Supports(cpuid.SSE2):
		return vectortier.SSE2
	case cpuid.CPU.Supports(cpuid.ASIMD):
		return vectortier.NEON
	default:
		return vectortier.Scalar
	}
}

var _ vectortier.Detector = Detector{}
