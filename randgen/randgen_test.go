package randgen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUint31StaysInRange(t *testing.T) {
	g := New()
	for i := 0; i < 1000; i++ {
		v := g.Uint31()
		require.Less(t, v, uint32(1)<<31)
	}
}

func TestGeneratorProducesVariation(t *testing.T) {
	g := New()
	seen := make(map[uint32]struct{})
	for i := 0; i < 50; i++ {
		seen[g.Uint32()] = struct{}{}
	}
	require.Greater(t, len(seen), 1)
}
