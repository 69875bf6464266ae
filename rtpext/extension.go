// Package rtpext implements RTP header extension values (RFC 8285): the
// one-byte and two-byte on-wire profiles, a builder for the two-byte TLV
// entries this module emits, and the one-byte-to-two-byte canonicalizer
// run on ingress.
package rtpext

import "github.com/srtcgo/mediacore/bytesio"

// Wire extension profile ids, carried in the RTP extension block's 16-bit
// id field.
const (
	OneByteProfile uint16 = 0xBEDE
	TwoByteProfile uint16 = 0x1000
)

// reservedOneByteID is the one-byte profile's reserved local id; an entry
// using it aborts conversion (see ConvertOneToTwoByte).
const reservedOneByteID = 0x0F

// Extension is an RTP header extension block: a profile id and its raw
// TLV payload. The internal canonical form used throughout this module is
// always the two-byte profile; one-byte blocks are converted on ingress.
type Extension struct {
	ID   uint16
	Data []byte
}

// Empty reports whether the extension carries nothing.
func (e Extension) Empty() bool {
	return e.ID == 0 || len(e.Data) == 0
}

// Size returns the number of bytes e occupies on the wire: the 4-byte
// id/length header plus the data padded out to a 4-byte boundary. The
// empty extension has size 0 (it is omitted entirely).
func (e Extension) Size() int {
	if e.Empty() {
		return 0
	}
	return 4 + 4*((len(e.Data)+3)/4)
}

// Copy returns a deep copy of e.
func (e Extension) Copy() Extension {
	if len(e.Data) == 0 {
		return Extension{ID: e.ID}
	}
	data := make([]byte, len(e.Data))
	copy(data, e.Data)
	return Extension{ID: e.ID, Data: data}
}

// Contains reports whether the two-byte TLV stream in e.Data has an entry
// with the given local id.
func (e Extension) Contains(id uint8) bool {
	r := bytesio.NewReader(e.Data)
	for r.Remaining() >= 2 {
		entryID, err := r.ReadU8()
		if err != nil {
			return false
		}
		length, err := r.ReadU8()
		if err != nil {
			return false
		}
		if entryID == id {
			return true
		}
		if _, err := r.ReadByteBuffer(int(length)); err != nil {
			return false
		}
	}
	return false
}

// ConvertOneToTwoByte converts a one-byte profile extension payload
// (RFC 8285 section 4.2: 4-bit id, 4-bit length-minus-one) to the
// canonical two-byte form (8-bit id, 8-bit length). A zero byte or the
// reserved local id 0x0F ends conversion early, discarding any entries
// after it; a well-formed block only ever has padding there.
func ConvertOneToTwoByte(src []byte) []byte {
	w := bytesio.NewWriter()
	r := bytesio.NewReader(src)

	for r.Remaining() > 1 {
		value, err := r.ReadU8()
		if err != nil || value == 0 {
			break
		}

		id := value >> 4
		if id == reservedOneByteID {
			break
		}

		length := int(value&0x0F) + 1
		if r.Remaining() < length {
			break
		}

		data, err := r.ReadByteBuffer(length)
		if err != nil {
			break
		}

		w.WriteU8(id)
		w.WriteU8(uint8(length))
		w.Write(data)
	}

	return w.Bytes()
}

// TrimTrailingPadding walks a two-byte TLV stream and truncates it at the
// first zero id byte, dropping the zero-pad tail that fills the extension
// block out to a 4-byte boundary. A malformed entry met before any zero
// id byte leaves data unchanged.
func TrimTrailingPadding(data []byte) []byte {
	r := bytesio.NewReader(data)
	for r.Remaining() > 0 {
		pos := r.Position()
		id, err := r.ReadU8()
		if err != nil {
			return data
		}
		if id == 0 {
			return data[:pos]
		}
		length, err := r.ReadU8()
		if err != nil {
			return data
		}
		if _, err := r.ReadByteBuffer(int(length)); err != nil {
			return data
		}
	}
	return data
}
