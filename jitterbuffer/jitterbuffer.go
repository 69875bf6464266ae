// Package jitterbuffer reorders one track's incoming RTP packets, holds
// them long enough for lost ones to be retransmitted, and hands complete
// runs of packets to a Depacketizer once they are ready (or have waited
// too long).
package jitterbuffer

import (
	"time"

	"github.com/pion/logging"
	"github.com/srtcgo/mediacore/depacketizer"
	"github.com/srtcgo/mediacore/extvalue"
	"github.com/srtcgo/mediacore/rtpext"
	"github.com/srtcgo/mediacore/rtppacket"
	"github.com/srtcgo/mediacore/track"
)

// noPacketsResetDelay is how long Consume can go without a packet before
// a large forward sequence jump is treated as a stream restart (a new
// encoder session after a network blip) rather than ordinary loss.
const noPacketsResetDelay = 2 * time.Second

// farFuture marks a not-yet-received item's dequeue deadline as
// effectively infinite, so GetTimeoutMillis's early-exit check never
// mistakes "not received" for "already due".
var farFuture = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)

// Item is one RTP packet, received or still missing, held in a
// JitterBuffer's ring at an extended sequence number.
type Item struct {
	SeqExt          uint64
	RtpTimestampExt uint64
	Marker          bool
	Payload         []byte
	Kind            depacketizer.PacketKind

	Received   bool
	NackNeeded bool

	WhenReceived    time.Time
	WhenDequeue     time.Time
	WhenNackRequest time.Time
	WhenNackAbandon time.Time
}

// EncodedFrame is one complete, depacketized coded frame, plus the
// timing it cost to assemble.
type EncodedFrame struct {
	Track           *track.Track
	SeqExt          uint64
	RtpTimestampExt uint64
	Marker          bool

	FirstToLastPacketMillis int
	WaitTimeMillis          int

	Data []byte
}

// JitterBuffer reorders and times out one track's incoming RTP packets in
// a capacity-bounded ring indexed by extended sequence number, until they
// are ready for its Depacketizer, a NACK is due, or they have waited past
// their abandon deadline.
type JitterBuffer struct {
	log          logging.LeveledLogger
	track        *track.Track
	depacketizer depacketizer.Depacketizer

	capacity     uint64
	capacityMask uint64
	length       time.Duration
	nackDelay    time.Duration

	seq       *extvalue.ExtendedValue[uint16]
	timestamp *extvalue.ExtendedValue[uint32]

	lastPacketTime time.Time
	items          []*Item
	minSeq         uint64
	maxSeq         uint64

	baseTime         time.Time
	baseRtpTimestamp uint64

	hasLastFrameTimestamp bool
	lastFrameTimestamp    uint64
}

// New creates a JitterBuffer for tr. capacity must be a power of two;
// length is how long a packet waits after its scheduled presentation time
// before being dequeued, and nackDelay how long an unreceived packet
// waits before a NACK is requested for it. A nil loggerFactory falls
// back to logging.NewDefaultLoggerFactory().
func New(tr *track.Track, dep depacketizer.Depacketizer, capacity uint64, length, nackDelay time.Duration, loggerFactory logging.LoggerFactory) *JitterBuffer {
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}
	return &JitterBuffer{
		log:          loggerFactory.NewLogger("jitterbuffer"),
		track:        tr,
		depacketizer: dep,
		capacity:     capacity,
		capacityMask: capacity - 1,
		length:       length,
		nackDelay:    nackDelay,
		seq:          extvalue.New16(),
		timestamp:    extvalue.New32(),
	}
}

// Track returns the track this buffer was created for.
func (j *JitterBuffer) Track() *track.Track { return j.track }

func diffMillis(when, now time.Time) int {
	return int((when.Sub(now) + 500*time.Microsecond) / time.Millisecond)
}

func newLostItem(whenNackRequest, whenNackAbandon time.Time, seqExt uint64) *Item {
	return &Item{
		SeqExt:          seqExt,
		WhenDequeue:     farFuture,
		WhenNackRequest: whenNackRequest,
		WhenNackAbandon: whenNackAbandon,
		Received:        false,
		NackNeeded:      true,
	}
}

func (j *JitterBuffer) reset() {
	j.items = nil
	j.minSeq = 0
	j.maxSeq = 0
	j.depacketizer.Reset()
}

// Consume extends packet's sequence number and RTP timestamp, places it
// in the ring, and backfills any gap before it with not-yet-received
// placeholders. Packets older than the last frame already dequeued, or
// falling too far outside the current window, are dropped.
func (j *JitterBuffer) Consume(packet *rtppacket.Packet) {
	packet.StripRTXPrefix()

	seqExt := j.seq.Extend(packet.Sequence)
	rtpTimestampExt := j.timestamp.Extend(packet.Timestamp)

	if j.hasLastFrameTimestamp && j.lastFrameTimestamp > rtpTimestampExt {
		j.log.Warnf("dropping packet older than last dequeued frame, timestamp %d", rtpTimestampExt)
		return
	}

	now := time.Now()

	if j.items != nil {
		if now.Sub(j.lastPacketTime) >= noPacketsResetDelay && seqExt >= j.maxSeq+j.capacity/8 {
			j.log.Warn("resetting buffer after gap and forward sequence jump")
			j.reset()
		}
	}
	j.lastPacketTime = now

	var item *Item

	switch {
	case j.items == nil:
		j.items = make([]*Item, j.capacity)
		j.minSeq = seqExt
		j.maxSeq = seqExt + 1
		j.baseTime = now
		j.baseRtpTimestamp = rtpTimestampExt

		item = &Item{}
		j.items[seqExt&j.capacityMask] = item

	case seqExt+j.capacity/4 <= j.minSeq:
		j.log.Warnf("dropping packet too far behind the window, seq %d", seqExt)
		return

	case seqExt >= j.maxSeq+j.capacity/4:
		j.log.Warnf("dropping packet too far ahead of the window, seq %d", seqExt)
		return
	}

	rtpTimestampDelta := int64(rtpTimestampExt) - int64(j.baseRtpTimestamp)
	elapsedUsec := rtpTimestampDelta * 1_000_000 / int64(j.track.ClockRate())
	packetTime := j.baseTime.Add(time.Duration(elapsedUsec) * time.Microsecond)
	whenDequeue := packetTime.Add(j.length)
	whenNackRequest := now.Add(j.nackDelay)

	switch {
	case seqExt < j.minSeq:
		if seqExt+j.capacity < j.maxSeq {
			j.log.Warnf("dropping packet out of ring range, seq %d", seqExt)
			return
		}
		for lost := j.minSeq - 1; lost > seqExt; lost-- {
			j.items[lost&j.capacityMask] = newLostItem(whenNackRequest, whenDequeue, lost)
		}
		item = &Item{}
		j.items[seqExt&j.capacityMask] = item
		j.minSeq = seqExt

	case seqExt >= j.maxSeq:
		if seqExt > j.minSeq+j.capacity {
			j.log.Warnf("dropping packet out of ring range, seq %d", seqExt)
			return
		}
		for lost := j.maxSeq; lost < seqExt; lost++ {
			j.items[lost&j.capacityMask] = newLostItem(whenNackRequest, whenDequeue, lost)
		}
		item = &Item{}
		j.items[seqExt&j.capacityMask] = item
		j.maxSeq = seqExt + 1

	default:
		item = j.items[seqExt&j.capacityMask]
	}

	item.Received = true
	item.NackNeeded = false

	item.SeqExt = seqExt
	item.RtpTimestampExt = rtpTimestampExt
	item.Marker = packet.Marker
	item.Payload = packet.Payload

	item.WhenReceived = now
	item.WhenDequeue = whenDequeue
	item.WhenNackRequest = whenNackRequest
	item.WhenNackAbandon = whenDequeue

	item.Kind = j.depacketizer.PacketKind(item.Payload, item.Marker)
}

// GetTimeoutMillis returns how many milliseconds until the caller should
// next call ProcessDeque/ProcessNack, capped at defaultTimeout.
func (j *JitterBuffer) GetTimeoutMillis(defaultTimeout int) int {
	if j.items == nil {
		return defaultTimeout
	}

	now := time.Now()
	cutoff := now.Add(time.Duration(defaultTimeout) * time.Millisecond)

	var haveDequeue, haveRequest, haveAbandon bool
	var whenDequeue, whenRequest, whenAbandon int

	if !j.track.HasNACK() {
		haveRequest, whenRequest = true, 2*defaultTimeout
		haveAbandon, whenAbandon = true, 2*defaultTimeout
	}

	for seq := j.minSeq; seq < j.maxSeq; seq++ {
		item := j.items[seq&j.capacityMask]

		if item.Received {
			if !haveDequeue {
				haveDequeue, whenDequeue = true, diffMillis(item.WhenDequeue, now)
			}
		} else {
			if !haveRequest && item.NackNeeded {
				haveRequest, whenRequest = true, diffMillis(item.WhenNackRequest, now)
			}
			if !haveAbandon {
				haveAbandon, whenAbandon = true, diffMillis(item.WhenNackAbandon, now)
			}
		}

		if haveDequeue && haveRequest && haveAbandon {
			break
		}
		if item.WhenDequeue.After(cutoff) && item.WhenNackRequest.After(cutoff) && item.WhenNackAbandon.After(cutoff) {
			break
		}
	}

	timeout := defaultTimeout
	if haveRequest && whenRequest < timeout {
		timeout = whenRequest
	}
	if haveAbandon && whenAbandon < timeout {
		timeout = whenAbandon
	}
	if haveDequeue && whenDequeue < timeout {
		timeout = whenDequeue
	}
	return timeout
}

func itemToPacket(tr *track.Track, item *Item) *rtppacket.Packet {
	return rtppacket.New(tr, item.Marker, 0, uint16(item.SeqExt), uint32(item.RtpTimestampExt), 0, rtpext.Extension{}, item.Payload)
}

func (j *JitterBuffer) deleteItemRange(start, end uint64) {
	for seq := start; seq <= end; seq++ {
		j.items[seq&j.capacityMask] = nil
	}
}

func (j *JitterBuffer) extractPacketList(start, end uint64) []*rtppacket.Packet {
	out := make([]*rtppacket.Packet, 0, end-start+1)
	for seq := start; seq <= end; seq++ {
		out = append(out, itemToPacket(j.track, j.items[seq&j.capacityMask]))
	}
	return out
}

// findMultiPacketSequence scans forward from minSeq+1 for the End item
// closing out the Start item at minSeq. If it finds a kind that can't
// belong to this run before finding one, it drops the broken prefix and
// resyncs minSeq past it.
func (j *JitterBuffer) findMultiPacketSequence() (uint64, bool) {
	for seq := j.minSeq + 1; seq < j.maxSeq; seq++ {
		item := j.items[seq&j.capacityMask]
		if !item.Received {
			break
		}
		switch item.Kind {
		case depacketizer.PacketKindEnd:
			return seq, true
		case depacketizer.PacketKindMiddle:
			continue
		default:
			j.deleteItemRange(j.minSeq, seq)
			j.minSeq = seq + 1
			return 0, false
		}
	}
	return 0, false
}

// findNextToDequeue reports whether a later, already-ready frame makes it
// safe to give up on the incomplete run starting at minSeq and drop it.
func (j *JitterBuffer) findNextToDequeue(now time.Time) bool {
	start := j.items[j.minSeq&j.capacityMask]

	for seq := j.minSeq + 1; seq < j.maxSeq; seq++ {
		item := j.items[seq&j.capacityMask]
		if item.Received && item.RtpTimestampExt > start.RtpTimestampExt && diffMillis(item.WhenDequeue, now) <= 0 {
			return true
		}
	}
	return false
}

func (j *JitterBuffer) appendToResult(result *[]*EncodedFrame, first, last *Item, now time.Time, frames [][]byte) {
	if len(frames) == 0 {
		return
	}
	if j.hasLastFrameTimestamp && j.lastFrameTimestamp > first.RtpTimestampExt {
		return
	}
	j.hasLastFrameTimestamp = true
	j.lastFrameTimestamp = first.RtpTimestampExt

	for i, data := range frames {
		*result = append(*result, &EncodedFrame{
			Track:                   j.track,
			SeqExt:                  first.SeqExt,
			RtpTimestampExt:         first.RtpTimestampExt,
			Marker:                  last.Marker && i == len(frames)-1,
			FirstToLastPacketMillis: diffMillis(last.WhenReceived, first.WhenReceived),
			WaitTimeMillis:          diffMillis(now, last.WhenReceived),
			Data:                    data,
		})
	}
}

// ProcessDeque drains every item ready to leave the buffer, in order,
// returning the frames its Depacketizer assembled from them.
func (j *JitterBuffer) ProcessDeque() []*EncodedFrame {
	var result []*EncodedFrame
	if j.items == nil {
		return result
	}

	now := time.Now()

loop:
	for j.minSeq < j.maxSeq {
		seq := j.minSeq
		index := seq & j.capacityMask
		item := j.items[index]

		switch {
		case item.Received && diffMillis(item.WhenDequeue, now) <= 0:
			switch item.Kind {
			case depacketizer.PacketKindStandalone:
				frames := j.depacketizer.Extract([]*rtppacket.Packet{itemToPacket(j.track, item)})
				j.appendToResult(&result, item, item, now, frames)
				j.items[index] = nil
				j.minSeq++

			case depacketizer.PacketKindStart:
				if end, ok := j.findMultiPacketSequence(); ok {
					packets := j.extractPacketList(seq, end)
					frames := j.depacketizer.Extract(packets)
					last := j.items[end&j.capacityMask]
					j.appendToResult(&result, item, last, now, frames)
					j.deleteItemRange(seq, end)
					j.minSeq = end + 1
				} else if j.minSeq == seq { // findMultiPacketSequence may already have resynced minSeq
					if j.findNextToDequeue(now) {
						j.items[index] = nil
						j.minSeq++
					} else {
						break loop
					}
				}

			default: // Middle/End with no preceding Start: drop
				j.log.Warnf("dropping orphaned packet with no preceding Start, seq %d", item.SeqExt)
				j.items[index] = nil
				j.minSeq++
			}

		case !item.Received && diffMillis(item.WhenNackAbandon, now) <= 0:
			j.items[index] = nil
			j.minSeq++

		default:
			break loop
		}
	}

	return result
}

// ProcessNack returns the sequence numbers of currently unreceived items
// whose NACK request deadline has passed, marking each as requested so it
// is not returned again until it times out or arrives. Returns nil if the
// track has NACK disabled.
func (j *JitterBuffer) ProcessNack() []uint16 {
	var result []uint16
	if j.items == nil || !j.track.HasNACK() {
		return result
	}

	now := time.Now()

	for seq := j.minSeq; seq < j.maxSeq; seq++ {
		item := j.items[seq&j.capacityMask]

		if diffMillis(item.WhenNackRequest, now) <= 0 {
			if !item.Received && item.NackNeeded {
				item.NackNeeded = false
				result = append(result, uint16(item.SeqExt))
			}
		} else if !item.WhenNackAbandon.After(now) {
			break
		}
	}

	return result
}

// FreeEverything discards every buffered item and resets the
// depacketizer, as if the buffer had just been created.
func (j *JitterBuffer) FreeEverything() {
	j.reset()
}
