package depacketizer

import (
	"github.com/pion/logging"
	"github.com/pion/rtp/codecs"
	"github.com/srtcgo/mediacore/codecs/vp8"
	"github.com/srtcgo/mediacore/rtppacket"
)

// VP8 reassembles RFC 7741 RTP payloads into raw VP8 frames, gated
// until a key frame has been seen once.
type VP8 struct {
	log          logging.LeveledLogger
	seenKeyFrame bool
	frameBuffer  []byte
}

// NewVP8 creates a VP8 depacketizer. A nil loggerFactory falls back to
// logging.NewDefaultLoggerFactory().
func NewVP8(loggerFactory logging.LoggerFactory) *VP8 {
	return &VP8{log: newLogger(loggerFactory)}
}

func (d *VP8) Reset() {
	d.seenKeyFrame = false
	d.frameBuffer = nil
}

// PacketKind classifies payload by its payload descriptor's S bit and
// PID field: a packet with S=1, PID=0 starts a frame.
// https://datatracker.ietf.org/doc/html/rfc7741#section-4.2
func (d *VP8) PacketKind(payload []byte, marker bool) PacketKind {
	if len(payload) < 1 {
		return PacketKindStandalone
	}

	firstByte := payload[0]
	start := firstByte&(1<<4) != 0
	pid := firstByte & 0x07

	switch {
	case start && pid == 0:
		if marker {
			return PacketKindStandalone
		}
		return PacketKindStart
	case marker:
		return PacketKindEnd
	default:
		return PacketKindMiddle
	}
}

// vp8ExtractPayload strips the payload descriptor (and any extension
// bytes it carries) from one RTP payload, returning the VP8 payload
// bytes that follow it.
func vp8ExtractPayload(payload []byte) ([]byte, bool) {
	var vpkt codecs.VP8Packet
	if _, err := vpkt.Unmarshal(payload); err != nil {
		return nil, false
	}
	return vpkt.Payload, true
}

// Extract reassembles a sequence-ordered run of packets into raw VP8
// frames.
func (d *VP8) Extract(packets []*rtppacket.Packet) [][]byte {
	var out [][]byte

	for _, packet := range packets {
		payload, ok := vp8ExtractPayload(packet.Payload)
		if !ok {
			d.log.Warn("dropping packet with malformed VP8 payload descriptor")
			continue
		}
		d.frameBuffer = append(d.frameBuffer, payload...)

		if packet.Marker {
			frame := d.frameBuffer
			d.frameBuffer = nil

			if len(frame) == 0 {
				continue
			}

			if !d.seenKeyFrame {
				if vp8.IsKeyFrame(frame) {
					d.seenKeyFrame = true
				} else {
					continue
				}
			}

			out = append(out, frame)
		}
	}

	return out
}
