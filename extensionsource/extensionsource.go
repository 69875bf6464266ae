// Package extensionsource implements the per-packet RTP header extension
// attachment policy a Packetizer consults before calling Generate: each
// source decides, per packet, whether it wants to contribute an
// extension entry, and if so adds it to the Builder in progress.
package extensionsource

import (
	"github.com/srtcgo/mediacore/rtpext"
	"github.com/srtcgo/mediacore/track"
)

// Source is implemented by anything a Packetizer can ask to contribute
// RTP header extension entries to an outgoing packet.
type Source interface {
	// Wants reports whether this source has something to add to the
	// given packet of the given frame.
	Wants(tr *track.Track, isKeyFrame bool, packetNumber int) bool

	// AddExtension appends this source's entries to builder. Only
	// called when Wants returned true.
	AddExtension(builder *rtpext.Builder, tr *track.Track, isKeyFrame bool, packetNumber int)

	// GetPadding returns how many bytes of RTP padding this source wants
	// appended to a packet with remainingDataSize bytes left to send.
	GetPadding(tr *track.Track, remainingDataSize int) uint8
}
