package packetizer

import (
	"bytes"
	"testing"

	"github.com/srtcgo/mediacore/track"
	"github.com/stretchr/testify/require"
)

func TestH264GenerateKeyFrameEmitsStapAThenSlice(t *testing.T) {
	tr := newTestTrack(track.CodecH264)
	p := NewH264(NewBase(tr, nil, nil))
	p.SetCodecSpecificData([][]byte{annexBFrame([]byte{0x67, 0x01}, []byte{0x68, 0x02})})

	idr := []byte{0x65, 0xAA, 0xBB, 0xCC}
	frame := annexBFrame(idr)

	packets := p.Generate(0, 1_000_000, frame)
	require.Len(t, packets, 2)
	require.Equal(t, byte(24), packets[0].Payload[0]&0x1F) // STAP-A
	require.False(t, packets[0].Marker)
	require.True(t, packets[1].Marker)
	require.Equal(t, idr, packets[1].Payload)
}

func TestH264GenerateFragmentsLargeNalu(t *testing.T) {
	tr := newTestTrack(track.CodecH264)
	p := NewH264(NewBase(tr, nil, nil))

	large := append([]byte{0x41}, bytes.Repeat([]byte{0xAB}, 2000)...)
	frame := annexBFrame(large)

	packets := p.Generate(0, 1_000_000, frame)
	require.Greater(t, len(packets), 1)

	first := packets[0].Payload
	require.Equal(t, byte(28), first[0]&0x1F) // FU-A
	require.NotZero(t, first[1]&(1<<7))        // start bit
	require.True(t, packets[len(packets)-1].Marker)

	last := packets[len(packets)-1].Payload
	require.NotZero(t, last[1]&(1<<6)) // end bit
}
