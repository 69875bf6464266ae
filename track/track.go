// Package track describes a logical media stream (Track) and owns, by
// composition, the per-direction sequence/timestamp sources and stats a
// Packetizer, Depacketizer and JitterBuffer read from.
package track

import (
	"github.com/srtcgo/mediacore/randgen"
	"github.com/srtcgo/mediacore/rtptimesource"
	"github.com/srtcgo/mediacore/simulcast"
)

// Direction is the role this track plays for the local endpoint.
type Direction int

const (
	DirectionPublish Direction = iota
	DirectionSubscribe
)

// MediaType is the kind of media carried by a track.
type MediaType int

const (
	MediaTypeAudio MediaType = iota
	MediaTypeVideo
)

// Codec identifies the payload format carried by a track.
type Codec int

const (
	CodecH264 Codec = iota
	CodecH265
	CodecVP8
	CodecAV1
	CodecOpus
)

// String names the codec, mainly for logging.
func (c Codec) String() string {
	switch c {
	case CodecH264:
		return "h264"
	case CodecH265:
		return "h265"
	case CodecVP8:
		return "vp8"
	case CodecAV1:
		return "av1"
	case CodecOpus:
		return "opus"
	default:
		return "unknown"
	}
}

// SimulcastLayer describes one layer this track sends, plus its spatial
// index within the simulcast/SVC encoding.
type SimulcastLayer struct {
	simulcast.Layer
	Index uint8 // 0..3
}

// Config holds a Track's immutable attributes. Exported fields with an
// Init()-free construction: New fills in defaults for the zero value of
// Random only, everything else must be supplied by the caller since
// there is no sensible default for identifiers like SSRC or PayloadID.
type Config struct {
	TrackID        uint32
	Direction      Direction
	MediaType      MediaType
	MediaID        string
	SSRC           uint32
	PayloadID      uint8
	RTXSSRC        uint32
	RTXPayloadID   uint8
	RemoteSSRC     uint32
	Codec          Codec
	ClockRate      uint32
	SimulcastLayer *SimulcastLayer
	HasNACK        bool
	HasPLI         bool
	ProfileLevelID int

	// Random supplies initial sequence numbers and timestamps. A nil
	// value defaults to randgen.New().
	Random *randgen.Generator
}

// Track is a logical media stream: an immutable Config plus the mutable
// companions it owns by composition.
type Track struct {
	config Config

	rtcp  *RtcpPacketSource
	time  *rtptimesource.TimeSource
	rtp   *rtptimesource.PacketSource
	rtx   *rtptimesource.PacketSource
	stats *Stats
}

// New creates a Track and its companion sources.
func New(cfg Config) *Track {
	gen := cfg.Random
	if gen == nil {
		gen = randgen.New()
	}

	return &Track{
		config: cfg,
		rtcp:   NewRtcpPacketSource(cfg.SSRC),
		time:   rtptimesource.NewTimeSource(gen, cfg.ClockRate),
		rtp:    rtptimesource.NewPacketSource(gen, cfg.SSRC, cfg.PayloadID),
		rtx:    rtptimesource.NewPacketSource(gen, cfg.RTXSSRC, cfg.RTXPayloadID),
		stats:  &Stats{},
	}
}

func (t *Track) TrackID() uint32        { return t.config.TrackID }
func (t *Track) Direction() Direction   { return t.config.Direction }
func (t *Track) MediaType() MediaType   { return t.config.MediaType }
func (t *Track) MediaID() string        { return t.config.MediaID }
func (t *Track) PayloadID() uint8       { return t.config.PayloadID }
func (t *Track) RTXPayloadID() uint8    { return t.config.RTXPayloadID }
func (t *Track) Codec() Codec           { return t.config.Codec }
func (t *Track) ClockRate() uint32      { return t.config.ClockRate }
func (t *Track) HasNACK() bool          { return t.config.HasNACK }
func (t *Track) HasPLI() bool           { return t.config.HasPLI }
func (t *Track) ProfileLevelID() int    { return t.config.ProfileLevelID }
func (t *Track) SSRC() uint32           { return t.config.SSRC }
func (t *Track) RTXSSRC() uint32        { return t.config.RTXSSRC }
func (t *Track) RemoteSSRC() uint32     { return t.config.RemoteSSRC }

// IsSimulcast reports whether this track declares a simulcast layer.
func (t *Track) IsSimulcast() bool { return t.config.SimulcastLayer != nil }

// SimulcastLayer returns the track's simulcast layer, or nil if none.
func (t *Track) SimulcastLayer() *SimulcastLayer { return t.config.SimulcastLayer }

// RtcpPacketSource returns the track's RTCP source.
func (t *Track) RtcpPacketSource() *RtcpPacketSource { return t.rtcp }

// RtpTimeSource returns the track's PTS-to-RTP-timestamp clock.
func (t *Track) RtpTimeSource() *rtptimesource.TimeSource { return t.time }

// RtpPacketSource returns the track's primary sequence-number source.
func (t *Track) RtpPacketSource() *rtptimesource.PacketSource { return t.rtp }

// RtxPacketSource returns the track's RTX sequence-number source.
func (t *Track) RtxPacketSource() *rtptimesource.PacketSource { return t.rtx }

// Stats returns the track's mutable counters.
func (t *Track) Stats() *Stats { return t.stats }
