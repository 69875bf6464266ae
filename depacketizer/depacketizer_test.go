package depacketizer

import (
	"github.com/srtcgo/mediacore/rtpext"
	"github.com/srtcgo/mediacore/rtppacket"
	"github.com/srtcgo/mediacore/track"
)

func newTestTrack(codec track.Codec) *track.Track {
	return track.New(track.Config{
		TrackID:   1,
		MediaType: track.MediaTypeVideo,
		MediaID:   "video0",
		SSRC:      1111,
		PayloadID: 96,
		Codec:     codec,
		ClockRate: 90000,
	})
}

func pkt(tr *track.Track, seq uint16, timestamp uint32, marker bool, payload []byte) *rtppacket.Packet {
	return rtppacket.New(tr, marker, 0, seq, timestamp, 0, rtpext.Extension{}, payload)
}
