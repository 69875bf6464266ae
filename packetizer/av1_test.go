package packetizer

import (
	"bytes"
	"testing"

	mcav1 "github.com/bluenviron/mediacommon/v2/pkg/codecs/av1"
	"github.com/srtcgo/mediacore/track"
	"github.com/stretchr/testify/require"
)

func av1LengthPrefixed(obus ...[]byte) []byte {
	var out []byte
	for _, o := range obus {
		out = append(out, mcav1.LEB128Marshal(uint(len(o)))...)
		out = append(out, o...)
	}
	return out
}

func av1Obu(obuType mcav1.OBUType, payload []byte) []byte {
	header := byte(obuType) << 3
	return append([]byte{header}, payload...)
}

func TestAV1GenerateSinglePacketSetsKeyFrameBit(t *testing.T) {
	tr := newTestTrack(track.CodecAV1)
	p := NewAV1(NewBase(tr, nil, nil))

	seqHdr := av1Obu(mcav1.OBUTypeSequenceHeader, []byte{0x01})
	frame := av1Obu(mcav1.OBUTypeFrame, []byte{0x00, 0x02}) // the leading sequence header makes this a key frame
	tu := av1LengthPrefixed(seqHdr, frame)

	require.True(t, p.IsKeyFrame(tu))

	packets := p.Generate(0, 1_000_000, tu)
	require.Len(t, packets, 1)
	require.NotZero(t, packets[0].Payload[0]&(1<<3)) // N bit
	require.True(t, packets[0].Marker)
}

func TestAV1GenerateFragmentsLargeObu(t *testing.T) {
	tr := newTestTrack(track.CodecAV1)
	p := NewAV1(NewBase(tr, nil, nil))

	large := av1Obu(mcav1.OBUTypeFrame, bytes.Repeat([]byte{0xEE}, 3000))
	tu := av1LengthPrefixed(large)

	packets := p.Generate(0, 1_000_000, tu)
	require.Greater(t, len(packets), 1)
	require.NotZero(t, packets[0].Payload[0]&(1<<6)) // Y (continues)
	require.NotZero(t, packets[1].Payload[0]&(1<<7)) // Z (continuation)
	require.True(t, packets[len(packets)-1].Marker)
}
