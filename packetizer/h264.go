package packetizer

import (
	"github.com/srtcgo/mediacore/codecs/h264"
	"github.com/srtcgo/mediacore/rtppacket"
)

// H264 packetizes Annex-B H.264 access units per RFC 6184: a leading
// STAP-A carrying SPS+PPS ahead of every key frame, FU-A fragmentation
// for any NALU that doesn't fit in one packet.
type H264 struct {
	Base

	sps []byte
	pps []byte
}

// NewH264 creates an H264 packetizer for the track in base.
func NewH264(base Base) *H264 {
	return &H264{Base: base}
}

// SetCodecSpecificData extracts SPS/PPS from out-of-band codec data
// (e.g. an SDP fmtp sprop-parameter-sets), each entry itself an
// Annex-B-delimited blob.
func (p *H264) SetCodecSpecificData(csd [][]byte) {
	p.sps = nil
	p.pps = nil
	for _, item := range csd {
		for _, nalu := range h264.Walk(item) {
			switch nalu.Type {
			case h264.NALUTypeSPS:
				p.sps = append([]byte(nil), nalu.Data...)
			case h264.NALUTypePPS:
				p.pps = append([]byte(nil), nalu.Data...)
			}
		}
	}
}

// IsKeyFrame reports whether frame contains an IDR slice.
func (p *H264) IsKeyFrame(frame []byte) bool {
	return h264.FrameHasKeyFrame(frame)
}

// Generate packetizes one Annex-B access unit into ordered RTP packets.
func (p *H264) Generate(mediaProtectionOverhead int, ptsUsec int64, frame []byte) []*rtppacket.Packet {
	var result []*rtppacket.Packet

	addedParameters := false
	frameTimestamp := p.Track.RtpTimeSource().GetFrameTimestamp(ptsUsec)
	basicPacketSize := p.BasicPacketSize(mediaProtectionOverhead)
	nalus := h264.Walk(frame)

	for _, nalu := range nalus {
		switch nalu.Type {
		case h264.NALUTypeSPS:
			p.sps = append([]byte(nil), nalu.Data...)
		case h264.NALUTypePPS:
			p.pps = append([]byte(nil), nalu.Data...)
		case h264.NALUTypeIDR:
			if !addedParameters && len(p.sps) > 0 && len(p.pps) > 0 {
				result = append(result, p.buildStapA(frameTimestamp))
			}
			addedParameters = true
		}

		if h264.IsParameter(nalu.Type) {
			continue
		}

		result = append(result, p.packetizeNalu(nalu, basicPacketSize, frameTimestamp)...)
	}

	return result
}

func (p *H264) buildStapA(timestamp uint32) *rtppacket.Packet {
	nri := h264.NRI(p.sps)
	if ppsNri := h264.NRI(p.pps); ppsNri > nri {
		nri = ppsNri
	}

	payload := make([]byte, 0, 1+2+len(p.sps)+2+len(p.pps))
	payload = append(payload, nri|uint8(h264.NALUTypeSTAPA))
	payload = append(payload, byte(len(p.sps)>>8), byte(len(p.sps)))
	payload = append(payload, p.sps...)
	payload = append(payload, byte(len(p.pps)>>8), byte(len(p.pps)))
	payload = append(payload, p.pps...)

	extension := p.BuildExtension(true, 0)
	rollover, sequence := p.Track.RtpPacketSource().NextSequence()
	return newPacket(p.Track, false, rollover, sequence, timestamp, 0, extension, payload)
}

func (p *H264) packetizeNalu(nalu h264.NALU, basicPacketSize int, timestamp uint32) []*rtppacket.Packet {
	data := nalu.Data
	padding := p.GetPadding(len(data))
	extension := p.BuildExtension(nalu.Type == h264.NALUTypeIDR, 0)
	packetSize := AdjustPacketSize(basicPacketSize, padding, extension)

	if packetSize >= len(data) {
		rollover, sequence := p.Track.RtpPacketSource().NextSequence()
		return []*rtppacket.Packet{
			newPacket(p.Track, nalu.AtEnd, rollover, sequence, timestamp, padding, extension, data),
		}
	}

	if len(data) <= 1 {
		return nil
	}

	return p.fragmentFUA(nalu, basicPacketSize, timestamp)
}

func (p *H264) fragmentFUA(nalu h264.NALU, basicPacketSize int, timestamp uint32) []*rtppacket.Packet {
	var result []*rtppacket.Packet

	nri := h264.NRI(nalu.Data)
	remaining := nalu.Data[1:]

	var padding uint8
	var extension = p.BuildExtension(nalu.Type == h264.NALUTypeIDR, 0)
	packetNumber := 0

	for len(remaining) > 0 {
		rollover, sequence := p.Track.RtpPacketSource().NextSequence()

		if packetNumber > 0 {
			padding = p.GetPadding(len(nalu.Data))
			extension = p.BuildExtension(nalu.Type == h264.NALUTypeIDR, packetNumber)
		}

		// the "-2" accounts for the FU-A indicator and header bytes
		packetSize := AdjustPacketSize(basicPacketSize-2, padding, extension)
		if packetNumber == 0 && packetSize >= len(remaining) {
			// cannot fragment a single FU-A as both start and end
			packetSize = len(remaining) - 10
		}

		isStart := packetNumber == 0
		isEnd := len(remaining) <= packetSize
		writeNow := len(remaining)
		if !isEnd {
			writeNow = packetSize
		}

		payload := make([]byte, 0, 2+writeNow)
		payload = append(payload, nri|uint8(h264.NALUTypeFUA))

		fuHeader := uint8(nalu.Type)
		if isStart {
			fuHeader |= 1 << 7
		}
		if isEnd {
			fuHeader |= 1 << 6
		}
		payload = append(payload, fuHeader)
		payload = append(payload, remaining[:writeNow]...)

		marker := isEnd && nalu.AtEnd
		result = append(result, newPacket(p.Track, marker, rollover, sequence, timestamp, padding, extension, payload))

		remaining = remaining[writeNow:]
		packetNumber++
	}

	return result
}
