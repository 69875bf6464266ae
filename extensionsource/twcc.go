package extensionsource

import (
	"github.com/srtcgo/mediacore/rtpext"
	"github.com/srtcgo/mediacore/track"
)

// TWCCSource attaches the transport-wide congestion control sequence
// number extension (draft-holmer-rmcat-transport-wide-cc-extensions) to
// every outgoing packet on every track sharing one transport, so a
// feedback packet can later report per-packet arrival times back to the
// sender's bandwidth estimator. Bandwidth estimation itself is out of
// scope here; this source only stamps the counter.
type TWCCSource struct {
	extID uint8
	next  uint16
}

// NewTWCCSource creates a TWCCSource. A zero extID disables it.
func NewTWCCSource(extID uint8) *TWCCSource {
	return &TWCCSource{extID: extID}
}

// Wants reports whether transport-wide sequence numbering is enabled.
func (s *TWCCSource) Wants(_ *track.Track, _ bool, _ int) bool {
	return s.extID != 0
}

// AddExtension stamps and advances the shared transport-wide counter.
func (s *TWCCSource) AddExtension(builder *rtpext.Builder, _ *track.Track, _ bool, _ int) {
	builder.AddU16Value(s.extID, s.next)
	s.next++
}

// GetPadding always returns 0: TWCC only stamps a sequence number, it
// never requests padding.
func (s *TWCCSource) GetPadding(_ *track.Track, _ int) uint8 {
	return 0
}
