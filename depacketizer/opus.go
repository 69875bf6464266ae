package depacketizer

import (
	"github.com/pion/logging"
	"github.com/srtcgo/mediacore/rtppacket"
)

// Opus packets are always standalone: every RTP payload is one
// complete, already-decodable Opus frame, so there is no framing to
// strip and no gating to apply.
type Opus struct{}

// NewOpus creates an Opus depacketizer. loggerFactory is accepted for
// consistency with the other codecs but unused: Opus has no malformed
// or gated input to warn about.
func NewOpus(loggerFactory logging.LoggerFactory) *Opus {
	return &Opus{}
}

func (d *Opus) Reset() {}

func (d *Opus) PacketKind(_ []byte, _ bool) PacketKind {
	return PacketKindStandalone
}

// Extract returns one output frame per input packet, each an unmodified
// copy of its payload.
func (d *Opus) Extract(packets []*rtppacket.Packet) [][]byte {
	out := make([][]byte, 0, len(packets))
	for _, packet := range packets {
		out = append(out, append([]byte(nil), packet.Payload...))
	}
	return out
}
