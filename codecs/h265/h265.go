// Package h265 classifies NAL units for RTP packetization and
// depacketization per RFC 7798.
package h265

import "github.com/srtcgo/mediacore/codecs/annexb"

// NALUType is the 6-bit type field of an H.265 NAL unit header.
type NALUType uint8

const (
	NALUTypeKeyFrame19 NALUType = 19 // IDR_W_RADL
	NALUTypeKeyFrame20 NALUType = 20 // IDR_N_LP
	NALUTypeKeyFrame21 NALUType = 21 // CRA_NUT

	NALUTypeVPS NALUType = 32
	NALUTypeSPS NALUType = 33
	NALUTypePPS NALUType = 34

	// NALUTypeAP and NALUTypeFU are RTP payload framing types, not
	// values that appear in an Annex-B elementary stream.
	NALUTypeAP NALUType = 48
	NALUTypeFU NALUType = 49
)

// Type extracts a NALU's type from its 2-byte NAL unit header.
func Type(nalu []byte) NALUType {
	return NALUType((nalu[0] >> 1) & 0x3F)
}

// LayerID and TemporalID extract the remaining NAL unit header fields.
func LayerID(nalu []byte) uint8 {
	return ((nalu[0] & 0x01) << 5) | ((nalu[1] >> 3) & 0x1F)
}

func TemporalID(nalu []byte) uint8 {
	return nalu[1] & 0x07
}

// IsParameter reports whether t is VPS, SPS or PPS.
func IsParameter(t NALUType) bool {
	return t == NALUTypeVPS || t == NALUTypeSPS || t == NALUTypePPS
}

// IsKeyFrame reports whether t is one of the IDR/CRA slice types.
func IsKeyFrame(t NALUType) bool {
	return t == NALUTypeKeyFrame19 || t == NALUTypeKeyFrame20 || t == NALUTypeKeyFrame21
}

// NALU is one NAL unit found while walking a frame, with its header
// type already decoded.
type NALU struct {
	Type  NALUType
	Data  []byte
	AtEnd bool
}

// Walk splits an Annex-B encoded frame into its constituent NALUs. Each
// NALU's Data starts at its 2-byte NAL unit header.
func Walk(frame []byte) []NALU {
	raw := annexb.Walk(frame)
	out := make([]NALU, 0, len(raw))
	for _, n := range raw {
		if len(n.Data) < 2 {
			continue
		}
		out = append(out, NALU{Type: Type(n.Data), Data: n.Data, AtEnd: n.AtEnd})
	}
	return out
}

// FrameHasKeyFrame reports whether frame contains a key frame NALU.
func FrameHasKeyFrame(frame []byte) bool {
	for _, n := range Walk(frame) {
		if IsKeyFrame(n.Type) {
			return true
		}
	}
	return false
}
