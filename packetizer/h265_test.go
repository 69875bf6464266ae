package packetizer

import (
	"bytes"
	"testing"

	"github.com/srtcgo/mediacore/track"
	"github.com/stretchr/testify/require"
)

func naluHeader265(naluType byte, layerID, temporalID uint8) []byte {
	b0 := naluType<<1 | (layerID >> 5)
	b1 := (layerID&0x1F)<<3 | temporalID
	return []byte{b0, b1}
}

func TestH265GenerateKeyFrameEmitsAPThenSlice(t *testing.T) {
	tr := newTestTrack(track.CodecH265)
	p := NewH265(NewBase(tr, nil, nil))

	vps := append(naluHeader265(32, 0, 0), 0x01)
	sps := append(naluHeader265(33, 0, 0), 0x02)
	pps := append(naluHeader265(34, 0, 0), 0x03)
	p.SetCodecSpecificData([][]byte{annexBFrame(vps, sps, pps)})

	idr := append(naluHeader265(19, 0, 0), 0xAA, 0xBB)
	frame := annexBFrame(idr)

	packets := p.Generate(0, 1_000_000, frame)
	require.Len(t, packets, 2)
	require.Equal(t, byte(48), (packets[0].Payload[0]>>1)&0x3F) // AP
	require.True(t, packets[1].Marker)
	require.Equal(t, idr, packets[1].Payload)
}

func TestH265GenerateFragmentsLargeNalu(t *testing.T) {
	tr := newTestTrack(track.CodecH265)
	p := NewH265(NewBase(tr, nil, nil))

	large := append(naluHeader265(1, 0, 0), bytes.Repeat([]byte{0xCD}, 2000)...)
	frame := annexBFrame(large)

	packets := p.Generate(0, 1_000_000, frame)
	require.Greater(t, len(packets), 1)

	first := packets[0].Payload
	require.Equal(t, byte(49), (uint16(first[0])<<8|uint16(first[1]))>>9&0x3F) // FU
	require.NotZero(t, first[2]&(1<<7))                                       // start bit
	require.True(t, packets[len(packets)-1].Marker)

	last := packets[len(packets)-1].Payload
	require.NotZero(t, last[2]&(1<<6)) // end bit
}
