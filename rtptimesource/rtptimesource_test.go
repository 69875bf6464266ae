package rtptimesource

import (
	"testing"

	"github.com/srtcgo/mediacore/randgen"
	"github.com/stretchr/testify/require"
)

func TestPacketSourceSequenceWraps(t *testing.T) {
	s := &PacketSource{ssrc: 1, payloadID: 96, next: 0xFFFE}

	rollover, seq := s.NextSequence()
	require.Equal(t, uint32(0), rollover)
	require.Equal(t, uint16(0xFFFE), seq)

	rollover, seq = s.NextSequence()
	require.Equal(t, uint32(0), rollover)
	require.Equal(t, uint16(0xFFFF), seq)

	rollover, seq = s.NextSequence()
	require.Equal(t, uint32(1), rollover)
	require.Equal(t, uint16(0x0000), seq)
}

func TestTimeSourceMonotoneForward(t *testing.T) {
	gen := randgen.New()
	ts := NewTimeSource(gen, 90000)

	first := ts.GetFrameTimestamp(1_000_000)
	second := ts.GetFrameTimestamp(1_020_000)
	require.Equal(t, first+90000*20000/1_000_000, second)
}

func TestTimeSourceRejectsBackwardPts(t *testing.T) {
	gen := randgen.New()
	ts := NewTimeSource(gen, 90000)

	first := ts.GetFrameTimestamp(1_000_000)
	ts.GetFrameTimestamp(1_020_000)
	backward := ts.GetFrameTimestamp(500_000)

	require.NotEqual(t, first, backward)
	require.Equal(t, first+90000*20000/1_000_000, backward)
}
