package packetizer

import (
	"github.com/srtcgo/mediacore/track"
)

func newTestTrack(codec track.Codec) *track.Track {
	return track.New(track.Config{
		TrackID:      1,
		MediaType:    track.MediaTypeVideo,
		MediaID:      "video0",
		SSRC:         1111,
		PayloadID:    96,
		RTXSSRC:      2222,
		RTXPayloadID: 97,
		Codec:        codec,
		ClockRate:    90000,
	})
}

func annexBFrame(nalus ...[]byte) []byte {
	var out []byte
	for _, n := range nalus {
		out = append(out, 0, 0, 0, 1)
		out = append(out, n...)
	}
	return out
}
