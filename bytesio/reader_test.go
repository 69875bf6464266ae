package bytesio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReaderBasic(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0xAA, 0xBB})

	v8, err := r.ReadU8()
	require.NoError(t, err)
	require.Equal(t, uint8(0x01), v8)

	v16, err := r.ReadU16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x0203), v16)

	v24, err := r.ReadU24()
	require.NoError(t, err)
	require.Equal(t, uint32(0x040506), v24)

	v32, err := NewReader([]byte{0, 0, 0, 1}).ReadU32()
	require.NoError(t, err)
	require.Equal(t, uint32(1), v32)

	buf, err := r.ReadByteBuffer(2)
	require.NoError(t, err)
	require.Equal(t, []byte{0x07, 0x08}, buf)

	require.Equal(t, 2, r.Remaining())
}

func TestReaderNotEnoughData(t *testing.T) {
	r := NewReader([]byte{0x01})

	_, err := r.ReadU16()
	require.ErrorIs(t, err, ErrNotEnoughData)

	// position must not have moved
	require.Equal(t, 0, r.Position())

	v, err := r.ReadU8()
	require.NoError(t, err)
	require.Equal(t, uint8(1), v)
}

func TestLEB128RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 16384, 1 << 32, 1<<56 - 1}

	for _, v := range values {
		w := NewWriter()
		w.WriteLEB128(v)

		r := NewReader(w.Bytes())
		got, err := r.ReadLEB128()
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestSkipAndPadding(t *testing.T) {
	w := NewWriter()
	w.WriteU8(1)
	w.Padding(0, 3)
	w.WriteU8(2)

	require.Equal(t, []byte{1, 0, 0, 0, 2}, w.Bytes())

	r := NewReader(w.Bytes())
	require.NoError(t, r.Skip(1))
	require.NoError(t, r.Skip(3))
	v, err := r.ReadU8()
	require.NoError(t, err)
	require.Equal(t, uint8(2), v)

	require.Error(t, r.Skip(1))
}
