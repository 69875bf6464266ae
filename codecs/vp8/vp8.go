// Package vp8 classifies raw VP8 frames for RTP packetization per
// RFC 7741.
package vp8

// IsKeyFrame reports whether frame's uncompressed data chunk tag marks
// it as a key frame. See https://datatracker.ietf.org/doc/html/rfc6386#section-9.1.
func IsKeyFrame(frame []byte) bool {
	if len(frame) < 3 {
		return false
	}
	tag := uint32(frame[0]) | uint32(frame[1])<<8 | uint32(frame[2])<<16
	return tag&0x01 == 0
}
