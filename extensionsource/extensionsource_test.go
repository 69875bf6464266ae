package extensionsource

import (
	"testing"

	"github.com/srtcgo/mediacore/rtpext"
	"github.com/srtcgo/mediacore/simulcast"
	"github.com/srtcgo/mediacore/track"
	"github.com/stretchr/testify/require"
)

func newSimulcastTrack(sentPackets uint64) *track.Track {
	tr := track.New(track.Config{
		MediaType: track.MediaTypeVideo,
		MediaID:   "video0",
		SSRC:      1,
		PayloadID: 96,
		Codec:     track.CodecVP8,
		ClockRate: 90000,
		SimulcastLayer: &track.SimulcastLayer{
			Layer: simulcast.Layer{Name: "f", KilobitPerSecond: 2000, Width: 1280, Height: 720, FramesPerSecond: 30},
			Index: 2,
		},
	})
	for i := uint64(0); i < sentPackets; i++ {
		tr.Stats().AddSent(100)
	}
	return tr
}

func TestSimulcastSourceShouldAddWithinFirst100OrKeyFrame(t *testing.T) {
	s := NewSimulcastSource(1, 2, 3, 4)

	early := newSimulcastTrack(5)
	require.True(t, s.ShouldAdd(early, false))

	late := newSimulcastTrack(200)
	require.False(t, s.ShouldAdd(late, false))
	require.True(t, s.ShouldAdd(late, true))
}

func TestSimulcastSourceInvalidWithoutAllIds(t *testing.T) {
	s := NewSimulcastSource(1, 2, 0, 0)
	tr := newSimulcastTrack(0)
	require.False(t, s.ShouldAdd(tr, true))
}

func TestSimulcastSourceWantsAfterPrepare(t *testing.T) {
	s := NewSimulcastSource(1, 2, 3, 4)
	tr := newSimulcastTrack(0)

	require.False(t, s.Wants(tr, false, 0))

	layers := []simulcast.Layer{
		{KilobitPerSecond: 500, Width: 320, Height: 180, FramesPerSecond: 15},
		{KilobitPerSecond: 2000, Width: 1280, Height: 720, FramesPerSecond: 30},
	}
	s.Prepare(tr, layers)
	require.True(t, s.Wants(tr, false, 0))

	b := rtpext.NewBuilder()
	s.AddExtension(b, tr, true, 0)
	ext := b.Build()
	require.False(t, ext.Empty())
	require.True(t, ext.Contains(1))
	require.True(t, ext.Contains(2))
	require.True(t, ext.Contains(4))

	s.Clear()
	require.False(t, s.Wants(tr, false, 0))
}

func TestSimulcastSourceUpdateForRtxFillsMissingIds(t *testing.T) {
	s := NewSimulcastSource(1, 2, 3, 4)
	tr := newSimulcastTrack(0)

	b := rtpext.NewBuilder()
	s.UpdateForRtx(b, tr)
	ext := b.Build()
	require.True(t, ext.Contains(1))
	require.True(t, ext.Contains(3))
	require.False(t, ext.Contains(2))
}

func TestTWCCSourceStampsIncreasingSequence(t *testing.T) {
	s := NewTWCCSource(5)
	tr := newSimulcastTrack(0)

	require.True(t, s.Wants(tr, false, 0))

	b1 := rtpext.NewBuilder()
	s.AddExtension(b1, tr, false, 0)
	b2 := rtpext.NewBuilder()
	s.AddExtension(b2, tr, false, 1)

	require.NotEqual(t, b1.Build().Data, b2.Build().Data)
}

func TestTWCCSourceDisabledWhenIdZero(t *testing.T) {
	s := NewTWCCSource(0)
	require.False(t, s.Wants(newSimulcastTrack(0), false, 0))
}
