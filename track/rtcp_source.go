package track

// RtcpPacketSource identifies the track for RTCP purposes (sender
// reports, feedback). It currently only carries the SSRC; report
// generation itself lives with the RTCP stack consuming this module, not
// in this core.
type RtcpPacketSource struct {
	ssrc uint32
}

// NewRtcpPacketSource creates an RtcpPacketSource for the given SSRC.
func NewRtcpPacketSource(ssrc uint32) *RtcpPacketSource {
	return &RtcpPacketSource{ssrc: ssrc}
}

// SSRC returns the track's SSRC.
func (s *RtcpPacketSource) SSRC() uint32 { return s.ssrc }
