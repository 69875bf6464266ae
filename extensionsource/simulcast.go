package extensionsource

import (
	"github.com/srtcgo/mediacore/rtpext"
	"github.com/srtcgo/mediacore/simulcast"
	"github.com/srtcgo/mediacore/track"
)

// SimulcastSource attaches the media-id, stream-id (RID) and Google
// video-layers-allocation extensions a simulcast receiver needs to
// associate incoming SSRCs with encodings and to size its jitter
// buffers. Zero ids disable the corresponding entry.
type SimulcastSource struct {
	extMediaID          uint8
	extStreamID         uint8
	extRepairedStreamID uint8
	extGoogleVLA        uint8
	valid               bool

	curMediaID   string
	curLayerName string
	curVLA       []byte
}

// NewSimulcastSource creates a SimulcastSource. It is valid (ever wants
// anything) only when extMediaID, extStreamID and extGoogleVLA are all
// non-zero; extRepairedStreamID may be zero if RTX isn't in use.
func NewSimulcastSource(extMediaID, extStreamID, extRepairedStreamID, extGoogleVLA uint8) *SimulcastSource {
	return &SimulcastSource{
		extMediaID:          extMediaID,
		extStreamID:         extStreamID,
		extRepairedStreamID: extRepairedStreamID,
		extGoogleVLA:        extGoogleVLA,
		valid:               extMediaID > 0 && extStreamID > 0 && extGoogleVLA > 0,
	}
}

// ShouldAdd reports whether the current frame should carry simulcast
// extensions at all: only for actually-simulcast tracks, and only for
// the first 100 packets sent plus every key frame after that, so a late
// joiner never waits more than one GOP for layer metadata.
func (s *SimulcastSource) ShouldAdd(tr *track.Track, isKeyFrame bool) bool {
	return s.valid && tr.IsSimulcast() && (tr.Stats().PacketsSent() < 100 || isKeyFrame)
}

// Prepare stages this frame's media id, layer name and Google VLA blob
// from tr's own simulcast layer plus the full sibling layer list (all
// layers sharing tr's rid group, in encoding order).
func (s *SimulcastSource) Prepare(tr *track.Track, layers []simulcast.Layer) {
	layer := tr.SimulcastLayer()
	if layer == nil {
		s.Clear()
		return
	}

	s.curMediaID = tr.MediaID()
	s.curLayerName = layer.Name

	b := rtpext.NewBuilder()
	b.AddGoogleVLA(s.extGoogleVLA, layer.Index, layers)
	// Keep only the entry's value: AddExtension writes its own id/length.
	data := b.Build().Data
	s.curVLA = nil
	if len(data) > 2 {
		s.curVLA = data[2:]
	}
}

// Clear discards the staged frame state.
func (s *SimulcastSource) Clear() {
	s.curMediaID = ""
	s.curLayerName = ""
	s.curVLA = nil
}

// Wants reports whether Prepare staged a non-empty VLA blob.
func (s *SimulcastSource) Wants(_ *track.Track, _ bool, _ int) bool {
	return len(s.curVLA) > 0
}

// AddExtension appends the media-id, stream-id and raw Google VLA
// entries staged by Prepare.
func (s *SimulcastSource) AddExtension(builder *rtpext.Builder, _ *track.Track, _ bool, _ int) {
	builder.AddStringValue(s.extMediaID, s.curMediaID)
	builder.AddStringValue(s.extStreamID, s.curLayerName)
	builder.AddBinaryValue(s.extGoogleVLA, s.curVLA)
}

// GetPadding always returns 0: simulcast metadata never pads a packet.
func (s *SimulcastSource) GetPadding(_ *track.Track, _ int) uint8 {
	return 0
}

// UpdateForRtx adds the media-id and repaired-stream-id entries an RTX
// packet needs when the retransmitted packet's own extension block
// (already built by AddExtension) didn't already carry them.
func (s *SimulcastSource) UpdateForRtx(builder *rtpext.Builder, tr *track.Track) {
	if id := s.extMediaID; id != 0 && !builder.Contains(id) {
		builder.AddStringValue(id, tr.MediaID())
	}
	if id := s.extRepairedStreamID; id != 0 && !builder.Contains(id) {
		if layer := tr.SimulcastLayer(); layer != nil {
			builder.AddStringValue(id, layer.Name)
		}
	}
}
