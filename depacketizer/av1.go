package depacketizer

import (
	mcav1 "github.com/bluenviron/mediacommon/v2/pkg/codecs/av1"
	"github.com/pion/logging"
	"github.com/pion/rtp/codecs"
	"github.com/srtcgo/mediacore/codecs/av1"
	"github.com/srtcgo/mediacore/rtppacket"
)

// AV1 reassembles https://aomediacodec.github.io/av1-rtp-spec/ RTP
// payloads into low-overhead-bitstream-format temporal units, gated
// until a key frame has been seen. There is no original reference
// implementation to port here (the C++ library this module grew out of
// left its AV1 depacketizer an empty stub); this follows the
// aggregation/fragmentation handling gortsplib's rtpav1 decoder uses.
type AV1 struct {
	log          logging.LeveledLogger
	seenKeyFrame bool

	fragments     [][]byte
	fragmentsSize int
}

// NewAV1 creates an AV1 depacketizer. A nil loggerFactory falls back to
// logging.NewDefaultLoggerFactory().
func NewAV1(loggerFactory logging.LoggerFactory) *AV1 {
	return &AV1{log: newLogger(loggerFactory)}
}

func (d *AV1) Reset() {
	d.seenKeyFrame = false
	d.fragments = nil
	d.fragmentsSize = 0
}

// PacketKind classifies payload by the aggregation header's Z
// (continues a previous OBU) and Y (continues into the next packet)
// bits.
func (d *AV1) PacketKind(payload []byte, marker bool) PacketKind {
	if len(payload) < 1 {
		return PacketKindStandalone
	}

	z := payload[0]&(1<<7) != 0
	y := payload[0]&(1<<6) != 0

	switch {
	case z && y:
		return PacketKindMiddle
	case z:
		return PacketKindEnd
	case y:
		return PacketKindStart
	default:
		return PacketKindStandalone
	}
}

func (d *AV1) resetFragments() {
	d.fragments = d.fragments[:0]
	d.fragmentsSize = 0
}

// decodeOBUs extracts the complete OBUs carried or completed by one RTP
// packet, buffering any OBU fragment that continues into a later packet.
func (d *AV1) decodeOBUs(payload []byte) [][]byte {
	var header codecs.AV1Packet
	if _, err := header.Unmarshal(payload); err != nil {
		d.log.Warn("dropping packet with malformed AV1 aggregation header")
		d.resetFragments()
		return nil
	}

	elements := header.OBUElements

	if header.Z {
		if d.fragmentsSize == 0 || len(elements) == 0 {
			d.log.Warn("dropping AV1 continuation fragment with no pending OBU")
			d.resetFragments()
			return nil
		}

		d.fragmentsSize += len(elements[0])
		if d.fragmentsSize > mcav1.MaxTemporalUnitSize {
			d.log.Warn("dropping AV1 fragment exceeding max temporal unit size")
			d.resetFragments()
			return nil
		}

		d.fragments = append(d.fragments, elements[0])
		elements = elements[1:]
	}

	var obus [][]byte

	if len(elements) > 0 {
		if d.fragmentsSize != 0 {
			obus = append(obus, joinFragments(d.fragments, d.fragmentsSize))
			d.resetFragments()
		}

		if header.Y {
			last := len(elements) - 1
			d.fragmentsSize += len(elements[last])
			if d.fragmentsSize > mcav1.MaxTemporalUnitSize {
				d.log.Warn("dropping AV1 fragment exceeding max temporal unit size")
				d.resetFragments()
				return nil
			}
			d.fragments = append(d.fragments, elements[last])
			elements = elements[:last]
		}

		obus = append(obus, elements...)
	} else if !header.Y && d.fragmentsSize != 0 {
		obus = append(obus, joinFragments(d.fragments, d.fragmentsSize))
		d.resetFragments()
	}

	return obus
}

func joinFragments(fragments [][]byte, size int) []byte {
	out := make([]byte, size)
	n := 0
	for _, f := range fragments {
		n += copy(out[n:], f)
	}
	return out
}

// Extract reassembles a sequence-ordered run of packets into
// low-overhead-bitstream-format temporal units.
func (d *AV1) Extract(packets []*rtppacket.Packet) [][]byte {
	var out [][]byte
	var temporalUnit [][]byte

	for _, packet := range packets {
		obus := d.decodeOBUs(packet.Payload)
		temporalUnit = append(temporalUnit, obus...)

		if !packet.Marker {
			continue
		}

		unit := temporalUnit
		temporalUnit = nil

		if len(unit) == 0 || len(unit) > mcav1.MaxOBUsPerTemporalUnit {
			continue
		}

		if !d.seenKeyFrame {
			isKeyFrame, err := av1.ContainsKeyFrame(unit)
			if err != nil || !isKeyFrame {
				continue
			}
			d.seenKeyFrame = true
		}

		frame, err := av1.Marshal(unit)
		if err != nil {
			continue
		}
		out = append(out, frame)
	}

	return out
}
