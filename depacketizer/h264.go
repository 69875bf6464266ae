package depacketizer

import (
	"github.com/pion/logging"
	"github.com/srtcgo/mediacore/bytesio"
	"github.com/srtcgo/mediacore/codecs/h264"
	"github.com/srtcgo/mediacore/rtppacket"
)

const (
	haveH264SPS = 0x01
	haveH264PPS = 0x02
	haveH264Key = 0x04

	haveH264All = haveH264SPS | haveH264PPS | haveH264Key
)

var annexBStartCode = [4]byte{0, 0, 0, 1}

// H264 reassembles RFC 6184 STAP-A/FU-A RTP payloads into Annex-B
// framed access units, gated until a SPS, a PPS and an IDR slice have
// all been seen at least once.
type H264 struct {
	log           logging.LeveledLogger
	haveBits      uint8
	frameBuffer   []byte
	lastTimestamp uint32
	haveTimestamp bool
}

// NewH264 creates an H264 depacketizer. A nil loggerFactory falls back to
// logging.NewDefaultLoggerFactory().
func NewH264(loggerFactory logging.LoggerFactory) *H264 {
	return &H264{log: newLogger(loggerFactory)}
}

func (d *H264) Reset() {
	d.haveBits = 0
	d.frameBuffer = nil
	d.haveTimestamp = false
}

// PacketKind classifies payload by its STAP-A/FU-A framing. Single
// NALUs and STAP-A aggregates are Standalone (one RTP packet, one
// output frame boundary); FU-A fragments are Start/Middle/End per the
// fragment header bits.
func (d *H264) PacketKind(payload []byte, marker bool) PacketKind {
	if len(payload) == 0 {
		return PacketKindStandalone
	}

	if h264.Type(payload) == h264.NALUTypeFUA {
		if len(payload) < 2 {
			return PacketKindStandalone
		}
		fuHeader := payload[1]
		switch {
		case fuHeader&(1<<7) != 0:
			return PacketKindStart
		case fuHeader&(1<<6) != 0:
			return PacketKindEnd
		default:
			return PacketKindMiddle
		}
	}

	return PacketKindStandalone
}

// Extract reassembles a sequence-ordered run of packets, spanning one
// or more access units, into Annex-B framed frames.
func (d *H264) Extract(packets []*rtppacket.Packet) [][]byte {
	var out [][]byte

	var fuBuf []byte
	fuActive := false

	for _, packet := range packets {
		payload := packet.Payload
		if len(payload) == 0 {
			continue
		}

		switch h264.Type(payload) {
		case h264.NALUTypeSTAPA:
			r := bytesio.NewReader(payload[1:])
			for r.Remaining() >= 2 {
				size, _ := r.ReadU16()
				if size == 0 || r.Remaining() < int(size) {
					d.log.Warn("dropping malformed STAP-A aggregate")
					break
				}
				nalu, _ := r.ReadByteBuffer(int(size))
				d.extractNalu(&out, packet, nalu)
			}

		case h264.NALUTypeFUA:
			if len(payload) < 2 {
				d.log.Warn("dropping truncated FU-A packet")
				continue
			}
			fuHeader := payload[1]
			isStart := fuHeader&(1<<7) != 0
			isEnd := fuHeader&(1<<6) != 0
			naluType := h264.NALUType(fuHeader & 0x1F)

			if isStart {
				nri := h264.NRI(payload)
				fuBuf = append([]byte{byte(naluType) | nri}, payload[2:]...)
				fuActive = true
			} else if fuActive {
				fuBuf = append(fuBuf, payload[2:]...)
			}

			if isEnd && fuActive {
				d.extractNalu(packet, fuBuf)
				fuBuf = nil
				fuActive = false
			}

		default:
			d.extractNalu(&out, packet, append([]byte(nil), payload...))
		}
	}

	return out
}

func (d *H264) extractNalu(out *[][]byte, packet *rtppacket.Packet, nalu []byte) {
	if len(nalu) == 0 {
		return
	}

	if d.haveBits&haveH264All != haveH264All {
		switch h264.Type(nalu) {
		case h264.NALUTypeSPS:
			d.haveBits |= haveH264SPS
		case h264.NALUTypePPS:
			d.haveBits |= haveH264PPS
		default:
			if h264.IsKeyFrame(h264.Type(nalu)) {
				d.haveBits |= haveH264Key
			} else {
				return
			}
		}
	}

	if !d.haveTimestamp || d.lastTimestamp != packet.Timestamp {
		d.lastTimestamp = packet.Timestamp
		d.haveTimestamp = true
		d.frameBuffer = nil
	}

	d.frameBuffer = append(d.frameBuffer, annexBStartCode[:]...)
	d.frameBuffer = append(d.frameBuffer, nalu...)

	if packet.Marker {
		*out = append(*out, d.frameBuffer)
		d.frameBuffer = nil
	}
}
