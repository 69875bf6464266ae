package rtpext

import (
	"github.com/srtcgo/mediacore/bytesio"
	"github.com/srtcgo/mediacore/simulcast"
)

// Builder accumulates two-byte-profile TLV entries and produces an
// Extension. Construct one with NewBuilder; the zero value is not usable.
type Builder struct {
	w    *bytesio.Writer
	seen map[uint8]struct{}
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{w: bytesio.NewWriter(), seen: make(map[uint8]struct{})}
}

func (b *Builder) writeEntry(id uint8, data []byte) {
	if len(data) > 255 {
		data = data[:255]
	}
	b.w.WriteU8(id)
	b.w.WriteU8(uint8(len(data)))
	b.w.Write(data)
	b.seen[id] = struct{}{}
}

// AddStringValue adds a UTF-8 string entry, clamped to 255 bytes.
func (b *Builder) AddStringValue(id uint8, value string) {
	b.writeEntry(id, []byte(value))
}

// AddU16Value adds a big-endian 16-bit integer entry.
func (b *Builder) AddU16Value(id uint8, value uint16) {
	tmp := bytesio.NewWriter()
	tmp.WriteU16(value)
	b.writeEntry(id, tmp.Bytes())
}

// AddU32Value adds a big-endian 32-bit integer entry.
func (b *Builder) AddU32Value(id uint8, value uint32) {
	tmp := bytesio.NewWriter()
	tmp.WriteU32(value)
	b.writeEntry(id, tmp.Bytes())
}

// AddBinaryValue adds a raw byte-slice entry, clamped to 255 bytes.
func (b *Builder) AddBinaryValue(id uint8, data []byte) {
	b.writeEntry(id, data)
}

// AddGoogleVLA adds a Google video-layers-allocation entry describing the
// simulcast/SVC layers currently being sent on this rid.
//
// https://webrtc.googlesource.com/src/+/refs/heads/main/docs/native-code/rtp-hdrext/video-layers-allocation00
func (b *Builder) AddGoogleVLA(id uint8, ridID uint8, layers []simulcast.Layer) {
	if len(layers) == 0 {
		return
	}

	tmp := bytesio.NewWriter()
	tmp.WriteU8((ridID << 6) | (uint8(len(layers)-1) << 4) | 0x01)
	tmp.WriteU8(0)

	for _, layer := range layers {
		tmp.WriteLEB128(layer.KilobitPerSecond)
	}
	for _, layer := range layers {
		tmp.WriteU16(layer.Width - 1)
		tmp.WriteU16(layer.Height - 1)
		tmp.WriteU8(layer.FramesPerSecond)
	}

	b.writeEntry(id, tmp.Bytes())
}

// Contains reports whether an entry with the given local id was added.
func (b *Builder) Contains(id uint8) bool {
	_, ok := b.seen[id]
	return ok
}

// Build returns the accumulated Extension, or the empty Extension if
// nothing was added.
func (b *Builder) Build() Extension {
	if b.w.Len() == 0 {
		return Extension{}
	}
	return Extension{ID: TwoByteProfile, Data: b.w.Bytes()}
}
