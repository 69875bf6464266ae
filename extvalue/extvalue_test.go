package extvalue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtend16Simple(t *testing.T) {
	e := New16()
	require.Equal(t, uint64(0x100FF), e.Extend(0xFF))
	require.Equal(t, uint64(0x10100), e.Extend(0x100))
	require.Equal(t, uint64(0x10101), e.Extend(0x101))
}

func TestExtend16Rollover(t *testing.T) {
	e := New16()
	require.Equal(t, uint64(0x1FF00), e.Extend(0xFF00))
	require.Equal(t, uint64(0x20010), e.Extend(0x0010))
}

func TestExtend32Simple(t *testing.T) {
	e := New32()
	require.Equal(t, uint64(0x1000000FF), e.Extend(0xFF))
	require.Equal(t, uint64(0x100000100), e.Extend(0x100))
}

func TestExtendMonotoneWithinQuarterRange(t *testing.T) {
	// Per the documented correctness contract: as long as every forward
	// step stays below 2^(N-2), the extended sequence is strictly
	// increasing and its low 16 bits always echo the input.
	e := New16()
	var seq uint16 = 1000
	var prev uint64
	for i := 0; i < 50; i++ {
		ext := e.Extend(seq)
		require.Equal(t, uint64(seq), ext&0xFFFF)
		if i > 0 {
			require.Greater(t, ext, prev)
		}
		prev = ext
		seq += 4000 // well within the 16384 quarter-range bound
	}
}

func TestExtendDistinguishesRepeatedNativeValueAcrossRollover(t *testing.T) {
	e := New16()
	first := e.Extend(42)
	for i := 0; i < 3; i++ {
		e.Extend(uint16(20000 * (i + 1)))
	}
	second := e.Extend(42)
	require.NotEqual(t, first, second)
	require.Equal(t, first&0xFFFF, second&0xFFFF)
}
