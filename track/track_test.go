package track

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTrackWiresCompanions(t *testing.T) {
	tr := New(Config{
		TrackID:      1,
		MediaType:    MediaTypeVideo,
		MediaID:      "video0",
		SSRC:         1111,
		PayloadID:    96,
		RTXSSRC:      2222,
		RTXPayloadID: 97,
		Codec:        CodecH264,
		ClockRate:    90000,
		HasNACK:      true,
		HasPLI:       true,
	})

	require.Equal(t, uint32(1111), tr.SSRC())
	require.Equal(t, uint32(2222), tr.RTXSSRC())
	require.Equal(t, uint32(1111), tr.RtcpPacketSource().SSRC())
	require.False(t, tr.IsSimulcast())
	require.True(t, tr.HasNACK())
	require.True(t, tr.HasPLI())
	require.Equal(t, "h264", tr.Codec().String())

	_, seq := tr.RtpPacketSource().NextSequence()
	_, rtxSeq := tr.RtxPacketSource().NextSequence()
	require.NotNil(t, seq)
	require.NotNil(t, rtxSeq)
}

func TestTrackStats(t *testing.T) {
	s := &Stats{}
	s.AddSent(100)
	s.AddSent(200)
	s.AddReceived(50)
	s.AddLost(3)

	require.Equal(t, uint64(2), s.PacketsSent())
	require.Equal(t, uint64(300), s.BytesSent())
	require.Equal(t, uint64(1), s.PacketsReceived())
	require.Equal(t, uint64(3), s.PacketsLost())
}
