// Package annexb walks an Annex-B elementary stream (H.264/H.265 frame
// data delimited by 3- or 4-byte start codes) and yields one NALU per
// iteration, tracking whether it is the last one in the frame.
package annexb

// NALU is one NAL unit found while walking a frame.
type NALU struct {
	// Data is the NALU payload, not including the start code.
	Data []byte
	// AtEnd reports whether this is the last NALU of the frame.
	AtEnd bool
}

func isStartCode4(buf []byte, pos int) bool {
	return pos+4 <= len(buf) && buf[pos] == 0 && buf[pos+1] == 0 && buf[pos+2] == 0 && buf[pos+3] == 1
}

func isStartCode3(buf []byte, pos int) bool {
	return pos+3 <= len(buf) && buf[pos] == 0 && buf[pos+1] == 0 && buf[pos+2] == 1
}

// findNext scans buf starting at pos for the next start code, returning
// its position and length (3 or 4), or (len(buf), 0) if none is found.
func findNext(buf []byte, pos int) (int, int) {
	for ; pos < len(buf); pos++ {
		if isStartCode4(buf, pos) {
			return pos, 4
		}
		if isStartCode3(buf, pos) {
			return pos, 3
		}
	}
	return len(buf), 0
}

// Walk splits frame into NALUs delimited by Annex-B start codes anywhere
// in the buffer. A frame with no start code at all yields no NALUs.
func Walk(frame []byte) []NALU {
	var out []NALU

	pos, skip := findNext(frame, 0)
	for pos < len(frame) {
		nextPos, nextSkip := findNext(frame, pos+skip)
		out = append(out, NALU{Data: frame[pos+skip : nextPos]})
		pos, skip = nextPos, nextSkip
	}

	if len(out) > 0 {
		out[len(out)-1].AtEnd = true
	}
	return out
}
