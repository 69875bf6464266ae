package track

import "sync/atomic"

// Stats holds a track's mutable running counters. All methods are safe
// for concurrent use.
type Stats struct {
	packetsSent     uint64
	bytesSent       uint64
	packetsReceived uint64
	bytesReceived   uint64
	packetsLost     uint64
	nacksSent       uint64
	nacksReceived   uint64
	plisSent        uint64
}

// AddSent records one outbound packet of size n bytes.
func (s *Stats) AddSent(n int) {
	atomic.AddUint64(&s.packetsSent, 1)
	atomic.AddUint64(&s.bytesSent, uint64(n))
}

// AddReceived records one inbound packet of size n bytes.
func (s *Stats) AddReceived(n int) {
	atomic.AddUint64(&s.packetsReceived, 1)
	atomic.AddUint64(&s.bytesReceived, uint64(n))
}

// AddLost records count packets declared lost (abandoned by the jitter
// buffer without ever arriving).
func (s *Stats) AddLost(count uint64) {
	atomic.AddUint64(&s.packetsLost, count)
}

// AddNackSent records a NACK request leaving this track.
func (s *Stats) AddNackSent(count uint64) {
	atomic.AddUint64(&s.nacksSent, count)
}

// AddNackReceived records a NACK request arriving for this track.
func (s *Stats) AddNackReceived(count uint64) {
	atomic.AddUint64(&s.nacksReceived, count)
}

// AddPliSent records a PLI leaving this track.
func (s *Stats) AddPliSent() {
	atomic.AddUint64(&s.plisSent, 1)
}

func (s *Stats) PacketsSent() uint64     { return atomic.LoadUint64(&s.packetsSent) }
func (s *Stats) BytesSent() uint64       { return atomic.LoadUint64(&s.bytesSent) }
func (s *Stats) PacketsReceived() uint64 { return atomic.LoadUint64(&s.packetsReceived) }
func (s *Stats) BytesReceived() uint64   { return atomic.LoadUint64(&s.bytesReceived) }
func (s *Stats) PacketsLost() uint64     { return atomic.LoadUint64(&s.packetsLost) }
func (s *Stats) NacksSent() uint64       { return atomic.LoadUint64(&s.nacksSent) }
func (s *Stats) NacksReceived() uint64   { return atomic.LoadUint64(&s.nacksReceived) }
func (s *Stats) PlisSent() uint64        { return atomic.LoadUint64(&s.plisSent) }
