package packetizer

import "github.com/srtcgo/mediacore/rtppacket"

// Opus packetizes one Opus frame per RFC 7587: a single RTP packet per
// frame, the marker bit always false, truncated rather than fragmented
// if it somehow exceeds MaxPayloadSize. Unlike the video packetizers,
// Opus only ever carries the TWCC extension: a simulcast source has
// nothing meaningful to add to an audio track.
type Opus struct {
	Base
}

// NewOpus creates an Opus packetizer for the track in base.
func NewOpus(base Base) *Opus {
	return &Opus{Base: base}
}

// Generate packetizes one Opus frame into a single RTP packet.
func (p *Opus) Generate(_ int, ptsUsec int64, frame []byte) []*rtppacket.Packet {
	frameTimestamp := p.Track.RtpTimeSource().GetFrameTimestamp(ptsUsec)

	payload := frame
	if len(payload) > MaxPayloadSize {
		payload = payload[:MaxPayloadSize]
	}

	// Opus tracks are never simulcast; callers construct this
	// packetizer's Base with a nil Simulcast source, so BuildExtension
	// only ever consults TWCC here.
	extension := p.BuildExtension(false, 0)

	rollover, sequence := p.Track.RtpPacketSource().NextSequence()
	return []*rtppacket.Packet{
		newPacket(p.Track, false, rollover, sequence, frameTimestamp, 0, extension, payload),
	}
}
