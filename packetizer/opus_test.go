package packetizer

import (
	"bytes"
	"testing"

	"github.com/srtcgo/mediacore/extensionsource"
	"github.com/srtcgo/mediacore/track"
	"github.com/stretchr/testify/require"
)

func newOpusTestTrack() *track.Track {
	return track.New(track.Config{
		TrackID:   1,
		MediaType: track.MediaTypeAudio,
		MediaID:   "audio0",
		SSRC:      3333,
		PayloadID: 111,
		Codec:     track.CodecOpus,
		ClockRate: 48000,
	})
}

func TestOpusGenerateOnePacketPerFrame(t *testing.T) {
	tr := newOpusTestTrack()
	p := NewOpus(NewBase(tr, nil, nil))

	frame := []byte{0xAA, 0xBB, 0xCC}
	packets := p.Generate(0, 1_000_000, frame)

	require.Len(t, packets, 1)
	require.False(t, packets[0].Marker)
	require.Equal(t, frame, packets[0].Payload)
}

func TestOpusGenerateTruncatesOversizedFrame(t *testing.T) {
	tr := newOpusTestTrack()
	p := NewOpus(NewBase(tr, nil, nil))

	frame := bytes.Repeat([]byte{0x01}, MaxPayloadSize+100)
	packets := p.Generate(0, 1_000_000, frame)

	require.Len(t, packets, 1)
	require.Len(t, packets[0].Payload, MaxPayloadSize)
}

func TestOpusGenerateStampsTWCCExtension(t *testing.T) {
	tr := newOpusTestTrack()
	twcc := extensionsource.NewTWCCSource(5)
	p := NewOpus(NewBase(tr, nil, twcc))

	packets := p.Generate(0, 1_000_000, []byte{0x01, 0x02})
	require.False(t, packets[0].Extension.Empty())
	require.True(t, packets[0].Extension.Contains(5))
}
