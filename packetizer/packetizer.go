// Package packetizer turns encoded video/audio frames into ordered RTP
// packets: RFC 6184 H.264, RFC 7798 H.265, the AV1 RTP payload format,
// RFC 7741 VP8 and RFC 7587 Opus.
package packetizer

import (
	"github.com/srtcgo/mediacore/extensionsource"
	"github.com/srtcgo/mediacore/rtpext"
	"github.com/srtcgo/mediacore/rtppacket"
	"github.com/srtcgo/mediacore/track"
)

// MaxPayloadSize is the largest RTP payload this package ever produces,
// before subtracting extension/padding/framing overhead.
const MaxPayloadSize = 1200

// minPayloadSize is the smallest basic packet size an extension block's
// size may be subtracted down to; when the extension would leave less,
// AdjustPacketSize does not subtract it (the extension is still attached).
const minPayloadSize = 600

// Base carries the per-track state and collaborators every codec's
// Generate needs: the track's own sequence/timestamp sources, plus the
// optional simulcast and TWCC extension sources.
type Base struct {
	Track     *track.Track
	Simulcast extensionsource.Source
	TWCC      extensionsource.Source
}

// NewBase creates a Base for tr. simulcast and twcc may be nil if that
// extension isn't in use.
func NewBase(tr *track.Track, simulcast, twcc extensionsource.Source) Base {
	return Base{Track: tr, Simulcast: simulcast, TWCC: twcc}
}

// BasicPacketSize is the usable RTP payload size before any per-packet
// extension, padding, or codec framing overhead is subtracted.
func (b Base) BasicPacketSize(mediaProtectionOverhead int) int {
	size := MaxPayloadSize - mediaProtectionOverhead
	if size < 0 {
		return 0
	}
	return size
}

// GetPadding asks the configured extension sources how much RTP padding
// they want appended, given remainingDataSize bytes still to send. No
// source is asked once less than 300 bytes remain, since padding this
// late in a frame isn't worth the extra trailer byte.
func (b Base) GetPadding(remainingDataSize int) uint8 {
	if remainingDataSize < 300 {
		return 0
	}

	var padding uint8
	if b.Simulcast != nil {
		if p := b.Simulcast.GetPadding(b.Track, remainingDataSize); p > padding {
			padding = p
		}
	}
	if b.TWCC != nil {
		if p := b.TWCC.GetPadding(b.Track, remainingDataSize); p > padding {
			padding = p
		}
	}
	return padding
}

// BuildExtension asks the configured extension sources whether they want
// to contribute to this packet and, if so, builds the combined
// extension block.
func (b Base) BuildExtension(isKeyFrame bool, packetNumber int) rtpext.Extension {
	wantsSimulcast := b.Simulcast != nil && b.Simulcast.Wants(b.Track, isKeyFrame, packetNumber)
	wantsTWCC := b.TWCC != nil && b.TWCC.Wants(b.Track, isKeyFrame, packetNumber)

	if !wantsSimulcast && !wantsTWCC {
		return rtpext.Extension{}
	}

	builder := rtpext.NewBuilder()
	if wantsSimulcast {
		b.Simulcast.AddExtension(builder, b.Track, isKeyFrame, packetNumber)
	}
	if wantsTWCC {
		b.TWCC.AddExtension(builder, b.Track, isKeyFrame, packetNumber)
	}
	return builder.Build()
}

// AdjustPacketSize subtracts padding (only when it's at most half of
// basicPacketSize) and the extension block's size (only when doing so
// wouldn't shrink the payload below minPayloadSize) from basicPacketSize.
func AdjustPacketSize(basicPacketSize int, padding uint8, extension rtpext.Extension) int {
	size := basicPacketSize
	if padding > 0 && int(padding) <= basicPacketSize/2 {
		size -= int(padding)
	}

	extensionSize := extension.Size()
	if extensionSize == 0 {
		return size
	}
	if extensionSize+minPayloadSize > basicPacketSize {
		return size
	}
	return size - extensionSize
}

// newPacket builds an outgoing Packet. An empty extension is stored as
// given; Generate writes no extension block for it.
func newPacket(tr *track.Track, marker bool, rollover uint32, sequence uint16, timestamp uint32, padding uint8, extension rtpext.Extension, payload []byte) *rtppacket.Packet {
	return rtppacket.New(tr, marker, rollover, sequence, timestamp, padding, extension, payload)
}
