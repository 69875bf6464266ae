// Package av1 classifies OBUs for RTP packetization and
// depacketization per https://aomediacodec.github.io/av1-rtp-spec/,
// building on mediacommon's OBU bitstream helpers.
package av1

import mcav1 "github.com/bluenviron/mediacommon/v2/pkg/codecs/av1"

// Walk splits a low-overhead-bitstream-format frame (each OBU prefixed
// by its own LEB128 size, obu_has_size_field set) into its OBUs.
func Walk(frame []byte) ([][]byte, error) {
	return mcav1.BitstreamUnmarshal(frame, true)
}

// ContainsKeyFrame reports whether any OBU in obus starts a key frame.
func ContainsKeyFrame(obus [][]byte) (bool, error) {
	return mcav1.ContainsKeyFrame(obus)
}

// Marshal reassembles obus into a low-overhead-bitstream-format frame,
// the inverse of Walk.
func Marshal(obus [][]byte) ([]byte, error) {
	return mcav1.BitstreamMarshal(obus)
}

// Header is an OBU header's RTP-relevant fields.
type Header struct {
	Type         mcav1.OBUType
	HasExtension bool
	TemporalID   uint8
	SpatialID    uint8
}

// ParseHeader reads obu's header, including the optional one-byte
// extension. obuHeaderSize reports how many leading bytes belonged to
// the header (1 or 2), to be skipped before copying payload bytes.
func ParseHeader(obu []byte) (Header, int) {
	h := Header{
		Type:         mcav1.OBUType((obu[0] >> 3) & 0x0F),
		HasExtension: obu[0]&(1<<2) != 0,
	}
	size := 1
	if h.HasExtension && len(obu) >= 2 {
		h.TemporalID = (obu[1] >> 5) & 0x07
		h.SpatialID = (obu[1] >> 3) & 0x03
		size = 2
	}
	return h, size
}
