// Package rtppacket serializes and parses the RTP wire format this module
// sends and receives: a 12-byte header, an optional two-byte-profile
// extension block, payload, and optional RFC 3550 padding.
package rtppacket

import (
	"github.com/pion/rtp"
	"github.com/srtcgo/mediacore/bytesio"
	"github.com/srtcgo/mediacore/rtpext"
	"github.com/srtcgo/mediacore/track"
)

// Output is what Generate/GenerateRtx hand to the network (or to SRTP
// ciphering, out of scope here): the wire bytes and the rollover the
// sequence number was generated under.
type Output struct {
	Bytes    []byte
	Rollover uint32
}

// Packet is an immutable RTP packet, either freshly built by a Packetizer
// or parsed from the wire by FromUdpPacket.
type Packet struct {
	Track       *track.Track
	Marker      bool
	Rollover    uint32
	Sequence    uint16
	Timestamp   uint32
	PaddingSize uint8
	Extension   rtpext.Extension
	Payload     []byte

	// IsRTX is set by FromUdpPacket when the packet matched the track's
	// RTX channel (SSRC + payload type) rather than its primary one. The
	// caller (JitterBuffer.Consume) is responsible for calling
	// StripRTXPrefix before extending the sequence number.
	IsRTX bool
}

// New builds a Packet for the primary channel of track.
func New(tr *track.Track, marker bool, rollover uint32, sequence uint16, timestamp uint32, padding uint8, extension rtpext.Extension, payload []byte) *Packet {
	return &Packet{
		Track:       tr,
		Marker:      marker,
		Rollover:    rollover,
		Sequence:    sequence,
		Timestamp:   timestamp,
		PaddingSize: padding,
		Extension:   extension,
		Payload:     payload,
	}
}

func writeExtensionBlock(w *bytesio.Writer, ext rtpext.Extension) {
	if ext.Empty() {
		return
	}

	// https://datatracker.ietf.org/doc/html/rfc3550#section-5.3.1
	w.WriteU16(ext.ID)
	w.WriteU16(uint16((len(ext.Data) + 3) / 4))
	w.Write(ext.Data)
	for pad := len(ext.Data); pad%4 != 0; pad++ {
		w.WriteU8(0)
	}
}

func writePaddingTrailer(w *bytesio.Writer, padding uint8) {
	if padding == 0 {
		return
	}
	w.Padding(0, int(padding)-1)
	w.WriteU8(padding)
}

func header16(payloadID uint8, padding, extension, marker bool) uint16 {
	h := uint16(2) << 14
	if padding {
		h |= 1 << 13
	}
	if extension {
		h |= 1 << 12
	}
	if marker {
		h |= 1 << 7
	}
	return h | (uint16(payloadID) & 0x7F)
}

// Generate serializes the packet for the primary channel of its track.
func (p *Packet) Generate() Output {
	w := bytesio.NewWriter()

	w.WriteU16(header16(p.Track.PayloadID(), p.PaddingSize != 0, !p.Extension.Empty(), p.Marker))
	w.WriteU16(p.Sequence)
	w.WriteU32(p.Timestamp)
	w.WriteU32(p.Track.SSRC())

	writeExtensionBlock(w, p.Extension)
	w.Write(p.Payload)
	writePaddingTrailer(w, p.PaddingSize)

	return Output{Bytes: w.Bytes(), Rollover: p.Rollover}
}

// GenerateRtx wraps the packet for retransmission per RFC 4588: a new
// SSRC/sequence drawn from the track's RTX channel, the original
// sequence number prepended to the payload, the original timestamp and
// padding preserved.
func (p *Packet) GenerateRtx(extension rtpext.Extension) Output {
	w := bytesio.NewWriter()

	w.WriteU16(header16(p.Track.RTXPayloadID(), p.PaddingSize != 0, !extension.Empty(), p.Marker))

	rollover, rtxSequence := p.Track.RtxPacketSource().NextSequence()
	w.WriteU16(rtxSequence)
	w.WriteU32(p.Timestamp)
	w.WriteU32(p.Track.RTXSSRC())

	writeExtensionBlock(w, extension)

	w.WriteU16(p.Sequence)
	w.Write(p.Payload)
	writePaddingTrailer(w, p.PaddingSize)

	return Output{Bytes: w.Bytes(), Rollover: rollover}
}

// FromUdpPacket parses data as an RTP packet addressed to tr, validating
// the SSRC/payload type against either its primary or RTX channel. It
// returns false for anything malformed: too short, an inconsistent
// extension length, or a padding count exceeding the payload. Any
// one-byte-profile extension is converted to the canonical two-byte
// form, and the padding trailer has already been removed from Payload.
func FromUdpPacket(tr *track.Track, data []byte) (*Packet, bool) {
	r := bytesio.NewReader(data)

	if r.Remaining() < 4+4+4 {
		return nil, false
	}

	header, _ := r.ReadU16()
	padding := header&(1<<13) != 0
	marker := header&(1<<7) != 0
	payloadID := uint8(header & 0x7F)

	sequence, _ := r.ReadU16()
	timestamp, _ := r.ReadU32()
	ssrc, _ := r.ReadU32()

	isPrimary := ssrc == tr.SSRC() && payloadID == tr.PayloadID()
	isRTX := ssrc == tr.RTXSSRC() && payloadID == tr.RTXPayloadID()
	if !isPrimary && !isRTX {
		return nil, false
	}

	var extension rtpext.Extension
	if header&(1<<12) != 0 {
		if r.Remaining() < 4 {
			return nil, false
		}

		extID, _ := r.ReadU16()
		extWords, _ := r.ReadU16()
		extSize := int(extWords) * 4

		if r.Remaining() < extSize {
			return nil, false
		}
		extData, _ := r.ReadByteBuffer(extSize)

		if extID == rtpext.OneByteProfile && len(extData) > 0 {
			extData = rtpext.ConvertOneToTwoByte(extData)
			extID = rtpext.TwoByteProfile
		}
		extData = rtpext.TrimTrailingPadding(extData)

		extension = rtpext.Extension{ID: extID, Data: extData}
	}

	payloadSize := r.Remaining()
	payload, _ := r.ReadByteBuffer(payloadSize)

	if padding {
		if len(payload) == 0 {
			return nil, false
		}
		paddingCount := int(payload[len(payload)-1])
		if paddingCount > payloadSize {
			return nil, false
		}
		payload = payload[:payloadSize-paddingCount]
	}

	return &Packet{
		Track:     tr,
		Marker:    marker,
		Sequence:  sequence,
		Timestamp: timestamp,
		Extension: extension,
		Payload:   payload,
		IsRTX:     isRTX,
	}, true
}

// StripRTXPrefix removes the RFC 4588 original-sequence prefix from an
// RTX packet's payload and replaces Sequence with it. It is a no-op
// returning false when the packet isn't flagged as RTX.
func (p *Packet) StripRTXPrefix() bool {
	if !p.IsRTX || len(p.Payload) < 2 {
		return false
	}
	p.Sequence = uint16(p.Payload[0])<<8 | uint16(p.Payload[1])
	p.Payload = p.Payload[2:]
	p.IsRTX = false
	return true
}

// ToRTP converts the packet to a pion rtp.Packet, for handing off to
// transport/ciphering code built against the wider pion ecosystem.
func (p *Packet) ToRTP() *rtp.Packet {
	pkt := &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			Padding:        p.PaddingSize != 0,
			Marker:         p.Marker,
			PayloadType:    p.Track.PayloadID(),
			SequenceNumber: p.Sequence,
			Timestamp:      p.Timestamp,
			SSRC:           p.Track.SSRC(),
		},
		Payload:     p.Payload,
		PaddingSize: p.PaddingSize,
	}
	if !p.Extension.Empty() {
		pkt.Header.Extension = true
		pkt.Header.ExtensionProfile = p.Extension.ID
		_ = pkt.Header.SetExtension(0, p.Extension.Data)
	}
	return pkt
}
