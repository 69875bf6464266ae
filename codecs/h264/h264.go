// Package h264 classifies NAL units for RTP packetization and
// depacketization per RFC 6184.
package h264

import "github.com/srtcgo/mediacore/codecs/annexb"

// NALUType is the 5-bit type field of an H.264 NAL unit header.
type NALUType uint8

const (
	NALUTypeNonIDR NALUType = 1
	NALUTypeIDR    NALUType = 5
	NALUTypeSEI    NALUType = 6
	NALUTypeSPS    NALUType = 7
	NALUTypePPS    NALUType = 8

	// NALUTypeSTAPA and NALUTypeFUA are RTP payload framing types, not
	// values that appear in an Annex-B elementary stream.
	NALUTypeSTAPA NALUType = 24
	NALUTypeFUA   NALUType = 28
)

// Type extracts a NALU's type from its first byte.
func Type(nalu []byte) NALUType {
	return NALUType(nalu[0] & 0x1F)
}

// NRI extracts a NALU's nal_ref_idc from its first byte, already
// shifted into position for reuse as-is in a STAP-A/FU-A indicator.
func NRI(nalu []byte) uint8 {
	return nalu[0] & 0x60
}

// IsParameter reports whether naluType is SPS or PPS.
func IsParameter(t NALUType) bool {
	return t == NALUTypeSPS || t == NALUTypePPS
}

// IsKeyFrame reports whether t is the IDR slice type.
func IsKeyFrame(t NALUType) bool {
	return t == NALUTypeIDR
}

// NALU is one NAL unit found while walking a frame, with its header
// type already decoded.
type NALU struct {
	Type  NALUType
	Data  []byte
	AtEnd bool
}

// Walk splits an Annex-B encoded frame into its constituent NALUs.
func Walk(frame []byte) []NALU {
	raw := annexb.Walk(frame)
	out := make([]NALU, 0, len(raw))
	for _, n := range raw {
		if len(n.Data) == 0 {
			continue
		}
		out = append(out, NALU{Type: Type(n.Data), Data: n.Data, AtEnd: n.AtEnd})
	}
	return out
}

// FrameHasKeyFrame reports whether frame contains an IDR NALU.
func FrameHasKeyFrame(frame []byte) bool {
	for _, n := range Walk(frame) {
		if IsKeyFrame(n.Type) {
			return true
		}
	}
	return false
}
