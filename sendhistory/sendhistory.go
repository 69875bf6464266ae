// Package sendhistory keeps a short, bounded history of recently sent
// RTP packets per SSRC, so a NACK can be answered with a retransmission
// instead of forcing a new key frame.
package sendhistory

import "github.com/srtcgo/mediacore/rtppacket"

// DefaultCapacity is how many packets are kept per SSRC before the
// oldest is evicted.
const DefaultCapacity = 512

type ssrcHistory struct {
	ring  []*rtppacket.Packet
	next  int
	byseq map[uint16]*rtppacket.Packet
}

// History is a per-SSRC bounded cache of sent packets.
type History struct {
	capacity int
	tracks   map[uint32]*ssrcHistory
}

// New creates a History. A capacity of 0 uses DefaultCapacity.
func New(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{
		capacity: capacity,
		tracks:   make(map[uint32]*ssrcHistory),
	}
}

// Save records packet, evicting the oldest entry for its SSRC if the
// per-SSRC cache is already at capacity.
func (h *History) Save(packet *rtppacket.Packet) {
	ssrc := packet.Track.SSRC()

	t, ok := h.tracks[ssrc]
	if !ok {
		t = &ssrcHistory{
			ring:  make([]*rtppacket.Packet, h.capacity),
			byseq: make(map[uint16]*rtppacket.Packet),
		}
		h.tracks[ssrc] = t
	}

	if old := t.ring[t.next]; old != nil {
		if cur, ok := t.byseq[old.Sequence]; ok && cur == old {
			delete(t.byseq, old.Sequence)
		}
	}

	t.ring[t.next] = packet
	t.byseq[packet.Sequence] = packet
	t.next = (t.next + 1) % h.capacity
}

// Find returns the packet previously saved for ssrc/sequence, for NACK
// retransmission, or false if it is missing or already evicted.
func (h *History) Find(ssrc uint32, sequence uint16) (*rtppacket.Packet, bool) {
	t, ok := h.tracks[ssrc]
	if !ok {
		return nil, false
	}
	p, ok := t.byseq[sequence]
	return p, ok
}
