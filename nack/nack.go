// Package nack compresses a list of lost sequence numbers into RFC 4585
// generic NACK (PID, BLP) pairs and wraps them in an RTCP feedback packet.
package nack

import (
	"github.com/pion/rtcp"
)

// CompressList groups successive entries of seqs where the gap from the
// pair's base sequence is at most 16 into one (PID, BLP) pair: bit i
// (0..15) of the BLP is set when base+i+1 is also present. seqs must
// already be sorted ascending (modulo 16-bit wraparound).
func CompressList(seqs []uint16) []rtcp.NackPair {
	return rtcp.NackPairsFromSequenceNumbers(seqs)
}

// BuildFeedback wraps the lost sequence numbers owed to mediaSSRC (as
// returned by a JitterBuffer's ProcessNack) into a TransportLayerNack
// RTCP packet, or nil if there is nothing to report.
func BuildFeedback(senderSSRC, mediaSSRC uint32, seqs []uint16) *rtcp.TransportLayerNack {
	if len(seqs) == 0 {
		return nil
	}
	return &rtcp.TransportLayerNack{
		SenderSSRC: senderSSRC,
		MediaSSRC:  mediaSSRC,
		Nacks:      CompressList(seqs),
	}
}
