package packetizer

import (
	mcav1 "github.com/bluenviron/mediacommon/v2/pkg/codecs/av1"
	"github.com/srtcgo/mediacore/codecs/av1"
	"github.com/srtcgo/mediacore/rtpext"
	"github.com/srtcgo/mediacore/rtppacket"
)

// AV1 packetizes a low-overhead-bitstream-format temporal unit per
// https://aomediacodec.github.io/av1-rtp-spec/: each OBU is written as
// its own LEB128-length-prefixed element, packed greedily into packets
// up to the available payload budget, with Z/Y continuation bits set
// whenever an OBU is split across a packet boundary.
type AV1 struct {
	Base
}

// NewAV1 creates an AV1 packetizer for the track in base.
func NewAV1(base Base) *AV1 {
	return &AV1{Base: base}
}

// IsKeyFrame reports whether frame starts a new coded video sequence.
func (p *AV1) IsKeyFrame(frame []byte) bool {
	obus, err := av1.Walk(frame)
	if err != nil {
		return false
	}
	isKeyFrame, err := av1.ContainsKeyFrame(obus)
	return err == nil && isKeyFrame
}

type av1Writer struct {
	payload []byte
}

func newAV1Writer(isContinuation, isNewCodedVideoSequence bool) *av1Writer {
	var b byte
	if isContinuation {
		b |= 1 << 7
	}
	if isNewCodedVideoSequence {
		b |= 1 << 3
	}
	return &av1Writer{payload: []byte{b}}
}

func (w *av1Writer) markContinues() {
	w.payload[0] |= 1 << 6
}

func (w *av1Writer) writeElement(obuType mcav1.OBUType, hasExtension bool, temporalID, spatialID uint8, data []byte) {
	headerSize := 1
	if hasExtension {
		headerSize = 2
	}
	w.payload = append(w.payload, mcav1.LEB128Marshal(uint(headerSize+len(data)))...)

	header := byte(obuType) << 3
	if hasExtension {
		header |= 1 << 2
	}
	w.payload = append(w.payload, header)
	if hasExtension {
		w.payload = append(w.payload, temporalID<<5|spatialID<<3)
	}
	w.payload = append(w.payload, data...)
}

// Generate packetizes one temporal unit (the raw OBUs of a frame) into
// ordered RTP packets.
func (p *AV1) Generate(mediaProtectionOverhead int, ptsUsec int64, frame []byte) []*rtppacket.Packet {
	obus, err := av1.Walk(frame)
	if err != nil || len(obus) == 0 {
		return nil
	}

	isNewCodedVideoSequence, _ := av1.ContainsKeyFrame(obus)
	isKeyFrame := isNewCodedVideoSequence

	frameTimestamp := p.Track.RtpTimeSource().GetFrameTimestamp(ptsUsec)
	basicPacketSize := p.BasicPacketSize(mediaProtectionOverhead)

	var result []*rtppacket.Packet
	var w *av1Writer
	var padding uint8
	var extension rtpext.Extension
	var budget int
	isContinuation := false

	flush := func(marker bool) {
		rollover, sequence := p.Track.RtpPacketSource().NextSequence()
		result = append(result, newPacket(p.Track, marker, rollover, sequence, frameTimestamp, padding, extension, w.payload))
		w = nil
	}

	openPacket := func(remaining int) {
		padding = p.GetPadding(remaining)
		extension = p.BuildExtension(isKeyFrame, len(result))
		budget = AdjustPacketSize(basicPacketSize, padding, extension)
		w = newAV1Writer(isContinuation, isNewCodedVideoSequence)
		isNewCodedVideoSequence = false
	}

	for _, obu := range obus {
		header, headerSize := av1.ParseHeader(obu)
		data := obu[headerSize:]
		elementHeaderSize := 1
		if header.HasExtension {
			elementHeaderSize = 2
		}

		for len(data) > 0 {
			// Once a packet holds more than 5/6 of its budget, start a
			// fresh one rather than risk a too-tight fit for this OBU's
			// LEB128-length-and-header overhead.
			if w != nil && len(w.payload) >= budget*5/6 {
				flush(false)
			}
			if w == nil {
				openPacket(len(data))
			}

			avail := budget - len(w.payload) - elementHeaderSize
			avail -= len(mcav1.LEB128Marshal(uint(budget)))
			writeNow := len(data)
			if writeNow > avail {
				writeNow = avail
			}
			if writeNow < 1 {
				// budget too tight even for a fresh packet; make
				// progress anyway rather than loop forever.
				writeNow = 1
			}

			w.writeElement(header.Type, header.HasExtension, header.TemporalID, header.SpatialID, data[:writeNow])

			isContinuation = writeNow < len(data)
			data = data[writeNow:]

			if isContinuation {
				w.markContinues()
				flush(false)
			}
		}
	}

	if w != nil {
		rollover, sequence := p.Track.RtpPacketSource().NextSequence()
		result = append(result, newPacket(p.Track, true, rollover, sequence, frameTimestamp, padding, extension, w.payload))
	} else if len(result) > 0 {
		result[len(result)-1].Marker = true
	}

	return result
}
