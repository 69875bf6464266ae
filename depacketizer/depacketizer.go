// Package depacketizer reassembles received RTP payloads back into
// coded frames: the mirror image of packetizer. Each codec strips its
// own wire framing and reassembles fragmented NAL units/OBUs into
// Annex-B or raw frame buffers. H.264 and H.265 drop non-key slices until
// their parameter sets and a key frame have been seen, VP8 and AV1 drop
// frames until a key frame has been seen, and Opus passes every payload
// through.
package depacketizer

import (
	"github.com/pion/logging"
	"github.com/srtcgo/mediacore/rtppacket"
	"github.com/srtcgo/mediacore/track"
)

// newLogger resolves factory to logging.NewDefaultLoggerFactory() when nil
// and returns a logger scoped to "depacketizer".
func newLogger(factory logging.LoggerFactory) logging.LeveledLogger {
	if factory == nil {
		factory = logging.NewDefaultLoggerFactory()
	}
	return factory.NewLogger("depacketizer")
}

// PacketKind classifies a single RTP packet's place in a coded frame,
// for a JitterBuffer to use when detecting loss and grouping packets
// into a run before handing it to Extract.
type PacketKind int

const (
	PacketKindStandalone PacketKind = iota
	PacketKindStart
	PacketKindMiddle
	PacketKindEnd
)

// Depacketizer reassembles one track's RTP packets back into frames. It
// is stateful: Extract must be called with packets in RTP sequence
// order, and Reset clears any partially reassembled frame along with
// the have-we-seen-a-key-frame gate.
type Depacketizer interface {
	Reset()
	PacketKind(payload []byte, marker bool) PacketKind
	// Extract reassembles a sequence-ordered run of packets into zero
	// or more complete frames. Most calls span exactly one frame (a run
	// ending at a marker packet) and return at most one result, but a
	// run spanning several markers yields one result per marker seen.
	Extract(packets []*rtppacket.Packet) [][]byte
}

// New creates the depacketizer matching codec, or nil for a codec with
// no depacketizer implementation. A nil loggerFactory falls back to
// logging.NewDefaultLoggerFactory().
func New(codec track.Codec, loggerFactory logging.LoggerFactory) Depacketizer {
	switch codec {
	case track.CodecH264:
		return NewH264(loggerFactory)
	case track.CodecH265:
		return NewH265(loggerFactory)
	case track.CodecVP8:
		return NewVP8(loggerFactory)
	case track.CodecAV1:
		return NewAV1(loggerFactory)
	case track.CodecOpus:
		return NewOpus(loggerFactory)
	default:
		return nil
	}
}
