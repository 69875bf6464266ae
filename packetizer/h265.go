package packetizer

import (
	"github.com/srtcgo/mediacore/codecs/h265"
	"github.com/srtcgo/mediacore/rtppacket"
)

// H265 packetizes Annex-B H.265 access units per RFC 7798: a leading
// aggregation packet (AP) carrying VPS+SPS+PPS ahead of every key frame,
// FU fragmentation for any NALU that doesn't fit in one packet.
type H265 struct {
	Base

	vps []byte
	sps []byte
	pps []byte
}

// NewH265 creates an H265 packetizer for the track in base.
func NewH265(base Base) *H265 {
	return &H265{Base: base}
}

// SetCodecSpecificData extracts VPS/SPS/PPS from out-of-band codec data,
// each entry itself an Annex-B-delimited blob.
func (p *H265) SetCodecSpecificData(csd [][]byte) {
	p.vps, p.sps, p.pps = nil, nil, nil
	for _, item := range csd {
		for _, nalu := range h265.Walk(item) {
			switch nalu.Type {
			case h265.NALUTypeVPS:
				p.vps = append([]byte(nil), nalu.Data...)
			case h265.NALUTypeSPS:
				p.sps = append([]byte(nil), nalu.Data...)
			case h265.NALUTypePPS:
				p.pps = append([]byte(nil), nalu.Data...)
			}
		}
	}
}

// IsKeyFrame reports whether frame contains an IDR/CRA slice.
func (p *H265) IsKeyFrame(frame []byte) bool {
	return h265.FrameHasKeyFrame(frame)
}

// Generate packetizes one Annex-B access unit into ordered RTP packets.
func (p *H265) Generate(mediaProtectionOverhead int, ptsUsec int64, frame []byte) []*rtppacket.Packet {
	var result []*rtppacket.Packet

	addedParameters := false
	frameTimestamp := p.Track.RtpTimeSource().GetFrameTimestamp(ptsUsec)
	basicPacketSize := p.BasicPacketSize(mediaProtectionOverhead)

	for _, nalu := range h265.Walk(frame) {
		switch nalu.Type {
		case h265.NALUTypeVPS:
			p.vps = append([]byte(nil), nalu.Data...)
		case h265.NALUTypeSPS:
			p.sps = append([]byte(nil), nalu.Data...)
		case h265.NALUTypePPS:
			p.pps = append([]byte(nil), nalu.Data...)
		default:
			if h265.IsKeyFrame(nalu.Type) && !addedParameters && len(p.vps) > 0 && len(p.sps) > 0 && len(p.pps) > 0 {
				result = append(result, p.buildAP(frameTimestamp))
			}
		}

		if h265.IsKeyFrame(nalu.Type) {
			addedParameters = true
		}

		if h265.IsParameter(nalu.Type) {
			continue
		}

		result = append(result, p.packetizeNalu(nalu, basicPacketSize, frameTimestamp)...)
	}

	return result
}

func (p *H265) buildAP(timestamp uint32) *rtppacket.Packet {
	payload := make([]byte, 0, 2+2+len(p.vps)+2+len(p.sps)+2+len(p.pps))
	payload = append(payload, byte(h265.NALUTypeAP)<<1, 0)
	for _, unit := range [][]byte{p.vps, p.sps, p.pps} {
		payload = append(payload, byte(len(unit)>>8), byte(len(unit)))
		payload = append(payload, unit...)
	}

	extension := p.BuildExtension(true, 0)
	rollover, sequence := p.Track.RtpPacketSource().NextSequence()
	return newPacket(p.Track, false, rollover, sequence, timestamp, 0, extension, payload)
}

func (p *H265) packetizeNalu(nalu h265.NALU, basicPacketSize int, timestamp uint32) []*rtppacket.Packet {
	data := nalu.Data
	padding := p.GetPadding(len(data))
	extension := p.BuildExtension(h265.IsKeyFrame(nalu.Type), 0)
	packetSize := AdjustPacketSize(basicPacketSize, padding, extension)

	if packetSize >= len(data) {
		rollover, sequence := p.Track.RtpPacketSource().NextSequence()
		return []*rtppacket.Packet{
			newPacket(p.Track, nalu.AtEnd, rollover, sequence, timestamp, padding, extension, data),
		}
	}

	if len(data) <= 2 {
		return nil
	}

	return p.fragmentFU(nalu, basicPacketSize, timestamp)
}

func (p *H265) fragmentFU(nalu h265.NALU, basicPacketSize int, timestamp uint32) []*rtppacket.Packet {
	var result []*rtppacket.Packet

	layerID := h265.LayerID(nalu.Data)
	temporalID := h265.TemporalID(nalu.Data)
	remaining := nalu.Data[2:]

	var padding uint8
	extension := p.BuildExtension(h265.IsKeyFrame(nalu.Type), 0)
	packetNumber := 0

	for len(remaining) > 0 {
		rollover, sequence := p.Track.RtpPacketSource().NextSequence()

		if packetNumber > 0 {
			padding = p.GetPadding(len(nalu.Data))
			extension = p.BuildExtension(h265.IsKeyFrame(nalu.Type), packetNumber)
		}

		// the "-3" accounts for the 2-byte payload header plus the FU header
		packetSize := AdjustPacketSize(basicPacketSize-3, padding, extension)
		if packetNumber == 0 && packetSize >= len(remaining) {
			// cannot fragment a single FU as both start and end
			packetSize = len(remaining) - 10
		}

		isStart := packetNumber == 0
		isEnd := len(remaining) <= packetSize
		writeNow := len(remaining)
		if !isEnd {
			writeNow = packetSize
		}

		payload := make([]byte, 0, 3+writeNow)
		payloadHeader := uint16(h265.NALUTypeFU)<<9 | uint16(layerID)<<3 | uint16(temporalID)
		payload = append(payload, byte(payloadHeader>>8), byte(payloadHeader))

		fuHeader := uint8(nalu.Type) & 0x3F
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
