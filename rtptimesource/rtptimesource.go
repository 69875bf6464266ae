// Package rtptimesource supplies the per-track counters a Packetizer reads
// from: a randomised sequence-number source and a PTS-to-RTP-timestamp
// clock that can also extrapolate a timestamp with no frame in hand.
package rtptimesource

import (
	"time"

	"github.com/srtcgo/mediacore/randgen"
)

// PacketSource hands out sequence numbers for one RTP channel (primary or
// RTX) of a track, starting from a random value.
type PacketSource struct {
	ssrc      uint32
	payloadID uint8
	next      uint16
	rollover  uint32
}

// NewPacketSource creates a PacketSource with a randomised initial
// sequence number.
func NewPacketSource(gen *randgen.Generator, ssrc uint32, payloadID uint8) *PacketSource {
	return &PacketSource{
		ssrc:      ssrc,
		payloadID: payloadID,
		next:      gen.Uint16(),
	}
}

// SSRC returns the channel's SSRC.
func (s *PacketSource) SSRC() uint32 { return s.ssrc }

// PayloadID returns the channel's RTP payload type.
func (s *PacketSource) PayloadID() uint8 { return s.payloadID }

// NextSequence returns the next sequence number to use and the rollover
// count associated with it. Rollover increments the moment the sequence
// wraps from 0xFFFF back to 0x0000.
func (s *PacketSource) NextSequence() (rollover uint32, seq uint16) {
	seq = s.next
	rollover = s.rollover
	s.next++
	if s.next == 0 {
		s.rollover++
	}
	return rollover, seq
}

// TimeSource converts a track's presentation timestamps (microseconds) to
// RTP timestamp units at a fixed clock rate, starting from a random base
// value as RFC 3550 recommends.
type TimeSource struct {
	clockRate uint32
	baseTime  time.Time
	currRTP   uint32
	hasPTS    bool
	currPTS   int64
}

// NewTimeSource creates a TimeSource for the given clock rate (e.g. 90000
// for video, 48000 for Opus).
func NewTimeSource(gen *randgen.Generator, clockRate uint32) *TimeSource {
	return &TimeSource{
		clockRate: clockRate,
		baseTime:  time.Now(),
		currRTP:   gen.Uint31(),
	}
}

// GetFrameTimestamp advances the RTP clock by the elapsed time since the
// previous call and returns the new RTP timestamp. A pts that goes
// backward relative to the previous call is a caller bug; the clock is
// left unchanged and the current value is returned rather than going
// backward itself.
func (t *TimeSource) GetFrameTimestamp(ptsUsec int64) uint32 {
	if !t.hasPTS {
		t.hasPTS = true
		t.currPTS = ptsUsec
		t.baseTime = time.Now()
		return t.currRTP
	}

	elapsed := ptsUsec - t.currPTS
	if elapsed < 0 {
		return t.currRTP
	}

	t.currRTP += uint32(elapsed * int64(t.clockRate) / 1_000_000)
	t.currPTS = ptsUsec
	t.baseTime = time.Now()
	return t.currRTP
}

// GetCurrentTimestamp extrapolates the RTP timestamp from the wall clock
// elapsed since the last frame, for use when no frame is in hand (e.g. an
// RTCP sender report).
func (t *TimeSource) GetCurrentTimestamp() uint32 {
	elapsedUsec := time.Since(t.baseTime).Microseconds()
	return t.currRTP + uint32(elapsedUsec*int64(t.clockRate)/1_000_000)
}
