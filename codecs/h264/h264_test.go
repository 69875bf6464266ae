package h264

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func annexBFrame(nalus ...[]byte) []byte {
	var out []byte
	for _, n := range nalus {
		out = append(out, 0, 0, 0, 1)
		out = append(out, n...)
	}
	return out
}

func TestWalkSplitsNalus(t *testing.T) {
	sps := []byte{0x67, 0x01, 0x02}
	pps := []byte{0x68, 0x03}
	idr := []byte{0x65, 0xAA, 0xBB}

	nalus := Walk(annexBFrame(sps, pps, idr))
	require.Len(t, nalus, 3)
	require.Equal(t, NALUTypeSPS, nalus[0].Type)
	require.Equal(t, NALUTypePPS, nalus[1].Type)
	require.Equal(t, NALUTypeIDR, nalus[2].Type)
	require.False(t, nalus[0].AtEnd)
	require.True(t, nalus[2].AtEnd)
}

func TestFrameHasKeyFrame(t *testing.T) {
	nonIdr := []byte{0x41, 0x01}
	idr := []byte{0x65, 0x01}

	require.False(t, FrameHasKeyFrame(annexBFrame(nonIdr)))
	require.True(t, FrameHasKeyFrame(annexBFrame(nonIdr, idr)))
}

func TestNRIAndIsParameter(t *testing.T) {
	require.Equal(t, uint8(0x60), NRI([]byte{0x67}))
	require.True(t, IsParameter(NALUTypeSPS))
	require.True(t, IsParameter(NALUTypePPS))
	require.False(t, IsParameter(NALUTypeIDR))
}
