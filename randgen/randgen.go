// Package randgen provides the random values used to seed SSRCs, initial
// sequence numbers and initial RTP timestamps, wrapping pion's math/rand
// based generator instead of hand-rolling crypto/rand masking.
package randgen

import "github.com/pion/randutil"

// Generator produces the random integers used across this module. It is
// safe for concurrent use only if the underlying pion generator is; in
// practice one Generator is created per Track.
type Generator struct {
	src randutil.MathRandomGenerator
}

// New creates a Generator from randutil.NewMathRandomGenerator, which
// seeds from crypto/rand and falls back to the clock if that fails.
func New() *Generator {
	return &Generator{src: randutil.NewMathRandomGenerator()}
}

// Uint32 returns a random 32-bit value, used for SSRC generation.
func (g *Generator) Uint32() uint32 {
	return uint32(g.src.Uint64())
}

// Uint16 returns a random 16-bit value, used for initial RTP sequence
// numbers.
func (g *Generator) Uint16() uint16 {
	return uint16(g.src.Uint64())
}

// Uint31 returns a random value in [0, 2^31), used for initial RTP
// timestamps (RFC 3550 leaves the high bit unconstrained in practice, but
// the original implementation this module is based on restricts to 31
// bits to keep arithmetic away from signed overflow in callers that still
// treat timestamps as int32).
func (g *Generator) Uint31() uint32 {
	return uint32(g.src.Uint64()) & 0x7FFFFFFF
}
