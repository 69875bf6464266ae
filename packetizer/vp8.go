package packetizer

import (
	"github.com/srtcgo/mediacore/codecs/vp8"
	"github.com/srtcgo/mediacore/rtppacket"
)

// VP8 packetizes raw VP8 frames per RFC 7741, splitting into payload
// descriptor + partial-frame packets sized by the remaining extension
// and padding budget. The PID field is only ever 0 here: this module
// doesn't use VP8 picture ids.
type VP8 struct {
	Base
}

// NewVP8 creates a VP8 packetizer for the track in base.
func NewVP8(base Base) *VP8 {
	return &VP8{Base: base}
}

// IsKeyFrame reports whether frame's uncompressed data chunk tag marks
// it as a key frame.
func (p *VP8) IsKeyFrame(frame []byte) bool {
	return vp8.IsKeyFrame(frame)
}

// Generate packetizes one VP8 frame into ordered RTP packets.
func (p *VP8) Generate(mediaProtectionOverhead int, ptsUsec int64, frame []byte) []*rtppacket.Packet {
	if len(frame) < 3 {
		return nil
	}

	var result []*rtppacket.Packet

	isKeyFrame := vp8.IsKeyFrame(frame)
	frameTimestamp := p.Track.RtpTimeSource().GetFrameTimestamp(ptsUsec)
	basicPacketSize := p.BasicPacketSize(mediaProtectionOverhead)

	data := frame
	packetNumber := 0

	for len(data) > 0 {
		padding := p.GetPadding(len(data))
		extension := p.BuildExtension(isKeyFrame, packetNumber)

		// the "-1" accounts for the VP8 payload descriptor byte
		packetSize := AdjustPacketSize(basicPacketSize-1, padding, extension)

		writeNow := len(data)
		if writeNow > packetSize {
			writeNow = packetSize
		}

		payload := make([]byte, 0, 1+writeNow)
		// |X|R|N|S|R|  PID  |
		var descriptor byte
		if !isKeyFrame {
			descriptor |= 1 << 5 // N: non-reference frame
		}
		if packetNumber == 0 {
			descriptor |= 1 << 4 // S: start of partition
		}
		payload = append(payload, descriptor)
		payload = append(payload, data[:writeNow]...)

		marker := len(data) <= packetSize
		rollover, sequence := p.Track.RtpPacketSource().NextSequence()
		result = append(result, newPacket(p.Track, marker, rollover, sequence, frameTimestamp, padding, extension, payload))

		data = data[writeNow:]
		packetNumber++
	}

	return result
}
