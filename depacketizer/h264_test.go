package depacketizer

import (
	"bytes"
	"testing"

	"github.com/srtcgo/mediacore/rtppacket"
	"github.com/srtcgo/mediacore/track"
	"github.com/stretchr/testify/require"
)

func stapA(nalus ...[]byte) []byte {
	out := []byte{24} // NALUTypeSTAPA, NRI ignored by readers
	for _, n := range nalus {
		out = append(out, byte(len(n)>>8), byte(len(n)))
		out = append(out, n...)
	}
	return out
}

func TestH264ExtractWaitsForParameterSetsAndKeyFrame(t *testing.T) {
	tr := newTestTrack(track.CodecH264)
	d := NewH264(nil)

	nonKey := []byte{0x41, 0xAA} // NALUTypeNonIDR = 1
	out := d.Extract([]*rtppacket.Packet{pkt(tr, 1, 1000, true, nonKey)})
	require.Empty(t, out)
}

func TestH264ExtractEmitsStapAAsAnnexB(t *testing.T) {
	tr := newTestTrack(track.CodecH264)
	d := NewH264(nil)

	sps := []byte{0x67, 0x01}
	pps := []byte{0x68, 0x02}
	idr := []byte{0x65, 0x03}

	packets := []*rtppacket.Packet{
		pkt(tr, 1, 1000, true, stapA(sps, pps, idr)),
	}
	out := d.Extract(packets)

	require.Len(t, out, 1)
	require.True(t, bytes.Contains(out[0], append([]byte{0, 0, 0, 1}, sps...)))
	require.True(t, bytes.Contains(out[0], append([]byte{0, 0, 0, 1}, pps...)))
	require.True(t, bytes.Contains(out[0], append([]byte{0, 0, 0, 1}, idr...)))
}

func TestH264ExtractReassemblesFUA(t *testing.T) {
	tr := newTestTrack(track.CodecH264)
	d := NewH264(nil)

	sps := []byte{0x67, 0x01}
	pps := []byte{0x68, 0x02}
	_ = d.Extract([]*rtppacket.Packet{pkt(tr, 1, 1000, true, stapA(sps, pps))})

	const fuNRI = 0x60
	start := []byte{28 | fuNRI, 1<<7 | 5, 0xAA, 0xBB} // FU-A, start, IDR type 5
	mid := []byte{28 | fuNRI, 5, 0xCC}
	end := []byte{28 | fuNRI, 1<<6 | 5, 0xDD}

	packets := []*rtppacket.Packet{
		pkt(tr, 2, 2000, false, start),
		pkt(tr, 3, 2000, false, mid),
		pkt(tr, 4, 2000, true, end),
	}
	out := d.Extract(packets)

	require.Len(t, out, 1)
	want := append([]byte{0, 0, 0, 1}, 0x65)
	want = append(want, 0xAA, 0xBB, 0xCC, 0xDD)
	require.Equal(t, want, out[0])
}

func TestH264PacketKind(t *testing.T) {
	d := NewH264(nil)

	require.Equal(t, PacketKindStandalone, d.PacketKind([]byte{0x65}, true))
	require.Equal(t, PacketKindStart, d.PacketKind([]byte{28, 1 << 7}, false))
	require.Equal(t, PacketKindEnd, d.PacketKind([]byte{28, 1 << 6}, true))
	require.Equal(t, PacketKindMiddle, d.PacketKind([]byte{28, 0}, false))
}
