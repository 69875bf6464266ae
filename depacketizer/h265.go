package depacketizer

import (
	"github.com/pion/logging"
	"github.com/srtcgo/mediacore/bytesio"
	"github.com/srtcgo/mediacore/codecs/h265"
	"github.com/srtcgo/mediacore/rtppacket"
)

const (
	haveH265VPS = 0x01
	haveH265SPS = 0x02
	haveH265PPS = 0x04
	haveH265Key = 0x10

	haveH265All = haveH265VPS | haveH265SPS | haveH265PPS | haveH265Key
)

// H265 reassembles RFC 7798 AP/FU RTP payloads into Annex-B framed
// access units, gated until a VPS, an SPS, a PPS and a key frame slice
// have all been seen at least once.
type H265 struct {
	log           logging.LeveledLogger
	haveBits      uint8
	frameBuffer   []byte
	lastTimestamp uint32
	haveTimestamp bool
}

// NewH265 creates an H265 depacketizer. A nil loggerFactory falls back to
// logging.NewDefaultLoggerFactory().
func NewH265(loggerFactory logging.LoggerFactory) *H265 {
	return &H265{log: newLogger(loggerFactory)}
}

func (d *H265) Reset() {
	d.haveBits = 0
	d.frameBuffer = nil
	d.haveTimestamp = false
}

// PacketKind classifies payload by its AP/FU framing.
func (d *H265) PacketKind(payload []byte, marker bool) PacketKind {
	if len(payload) < 2 {
		return PacketKindStandalone
	}

	if h265.Type(payload) == h265.NALUTypeFU {
		if len(payload) < 3 {
			return PacketKindStandalone
		}
		fuHeader := payload[2]
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
func (d *H265) Extract(packets []*rtppacket.Packet) [][]byte {
	var out [][]byte

	var fuBuf []byte
	fuActive := false

	for _, packet := range packets {
		payload := packet.Payload
		if len(payload) < 2 {
			continue
		}

		switch h265.Type(payload) {
		case h265.NALUTypeAP:
			// https://datatracker.ietf.org/doc/html/rfc7798#section-4.4.2
			r := bytesio.NewReader(payload[2:])
			for r.Remaining() >= 2 {
				size, _ := r.ReadU16()
				if size < 2 || r.Remaining() < int(size) {
					d.log.Warn("dropping malformed AP aggregate")
					break
				}
				nalu, _ := r.ReadByteBuffer(int(size))
				d.extractNalu(packet, nalu)
			}

		case h265.NALUTypeFU:
			// https://datatracker.ietf.org/doc/html/rfc7798#section-4.4.3
			if len(payload) < 3 {
				d.log.Warn("dropping truncated FU packet")
				continue
			}
			layerID := h265.LayerID(payload)
			temporalID := h265.TemporalID(payload)
			fuHeader := payload[2]
			isStart := fuHeader&(1<<7) != 0
			isEnd := fuHeader&(1<<6) != 0
			naluType := fuHeader & 0x3F

			if isStart {
				header := (uint16(naluType) << 9) | (uint16(layerID) << 3) | uint16(temporalID)
				fuBuf = []byte{byte(header >> 8), byte(header)}
				fuBuf = append(fuBuf, payload[3:]...)
				fuActive = true
			} else if fuActive {
				fuBuf = append(fuBuf, payload[3:]...)
			}

			if isEnd && fuActive {
				d.extractNalu(packet, fuBuf)
				fuBuf = nil
				fuActive = false
			}

		default:
			// https://datatracker.ietf.org/doc/html/rfc7798#section-4.4.1
			d.extractNalu(packet, append([]byte(nil), payload...))
		}

		if packet.Marker && d.frameBuffer != nil {
			if d.haveBits&haveH265All == haveH265All {
				out = append(out, d.frameBuffer)
			}
			d.frameBuffer = nil
		}
	}

	return out
}

func (d *H265) extractNalu(packet *rtppacket.Packet, nalu []byte) {
	if len(nalu) < 2 {
		return
	}

	if d.haveBits&haveH265All != haveH265All {
		switch h265.Type(nalu) {
		case h265.NALUTypeVPS:
			d.haveBits |= haveH265VPS
		case h265.NALUTypeSPS:
			d.haveBits |= haveH265SPS
		case h265.NALUTypePPS:
			d.haveBits |= haveH265PPS
		default:
			if h265.IsKeyFrame(h265.Type(nalu)) {
				d.haveBits |= haveH265Key
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
}
