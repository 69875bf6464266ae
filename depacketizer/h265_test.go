package depacketizer

import (
	"bytes"
	"testing"

	"github.com/srtcgo/mediacore/rtppacket"
	"github.com/srtcgo/mediacore/track"
	"github.com/stretchr/testify/require"
)

func naluHeader265(naluType uint8, layerID, temporalID uint8) []byte {
	b0 := naluType<<1 | (layerID >> 5)
	b1 := (layerID&0x1F)<<3 | temporalID
	return []byte{b0, b1}
}

func ap265(nalus ...[]byte) []byte {
	out := append([]byte{}, naluHeader265(48, 0, 0)...) // NALUTypeAP
	for _, n := range nalus {
		out = append(out, byte(len(n)>>8), byte(len(n)))
		out = append(out, n...)
	}
	return out
}

func TestH265ExtractWaitsForFullParameterSetAndKeyFrame(t *testing.T) {
	tr := newTestTrack(track.CodecH265)
	d := NewH265(nil)

	nonKey := append(naluHeader265(1, 0, 0), 0xAA)
	out := d.Extract([]*rtppacket.Packet{pkt(tr, 1, 1000, true, nonKey)})
	require.Empty(t, out)
}

func TestH265ExtractEmitsAPAsAnnexB(t *testing.T) {
	tr := newTestTrack(track.CodecH265)
	d := NewH265(nil)

	vps := append(naluHeader265(32, 0, 0), 0x01)
	sps := append(naluHeader265(33, 0, 0), 0x02)
	pps := append(naluHeader265(34, 0, 0), 0x03)
	idr := append(naluHeader265(19, 0, 0), 0x04)

	out := d.Extract([]*rtppacket.Packet{pkt(tr, 1, 1000, true, ap265(vps, sps, pps, idr))})

	require.Len(t, out, 1)
	require.True(t, bytes.Contains(out[0], append([]byte{0, 0, 0, 1}, idr...)))
}

func TestH265ExtractReassemblesFU(t *testing.T) {
	tr := newTestTrack(track.CodecH265)
	d := NewH265(nil)

	vps := append(naluHeader265(32, 0, 0), 0x01)
	sps := append(naluHeader265(33, 0, 0), 0x02)
	pps := append(naluHeader265(34, 0, 0), 0x03)
	_ = d.Extract([]*rtppacket.Packet{pkt(tr, 1, 1000, true, ap265(vps, sps, pps))})

	fuHdr := naluHeader265(49, 0, 0) // NALUTypeFU
	start := append(append([]byte{}, fuHdr...), 1<<7|19, 0xAA)
	end := append(append([]byte{}, fuHdr...), 1<<6|19, 0xBB)

	packets := []*rtppacket.Packet{
		pkt(tr, 2, 2000, false, start),
		pkt(tr, 3, 2000, true, end),
	}
	out := d.Extract(packets)

	require.Len(t, out, 1)
	require.True(t, bytes.Contains(out[0], []byte{0xAA, 0xBB}))
}

func TestH265PacketKind(t *testing.T) {
	d := NewH265(nil)

	fuHdr := naluHeader265(49, 0, 0)
	require.Equal(t, PacketKindStart, d.PacketKind(append(append([]byte{}, fuHdr...), 1<<7), false))
	require.Equal(t, PacketKindEnd, d.PacketKind(append(append([]byte{}, fuHdr...), 1<<6), true))
	require.Equal(t, PacketKindStandalone, d.PacketKind(naluHeader265(19, 0, 0), true))
}
