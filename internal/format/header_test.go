package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	b := make([]byte, 64)

	require.NoError(t, WriteHeader(b, 0, Header{Size: 20, Free: false, Prev: NoPrev}))
	require.NoError(t, WriteHeader(b, 32, Header{Size: 20, Free: true, Prev: 0}))

	h, err := ReadHeader(b, 0)
	require.NoError(t, err)
	require.Equal(t, Header{Size: 20, Prev: NoPrev}, h)
	require.False(t, h.HasPrev())
	require.Equal(t, 32, h.End(0))

	h, err = ReadHeader(b, 32)
	require.NoError(t, err)
	require.True(t, h.Free)
	require.True(t, h.HasPrev())
	require.Equal(t, uint32(0), h.Prev)
}

func TestSetPrev(t *testing.T) {
	b := make([]byte, 32)
	require.NoError(t, WriteHeader(b, 20, Header{Size: 0, Free: true, Prev: NoPrev}))
	require.NoError(t, SetPrev(b, 20, 0))
	h, err := ReadHeader(b, 20)
	require.NoError(t, err)
	require.Equal(t, uint32(0), h.Prev)
	require.True(t, h.Free, "other fields untouched")
}

func TestReadHeaderRejectsMalformed(t *testing.T) {
	b := make([]byte, 32)

	_, err := ReadHeader(b, 24)
	require.ErrorIs(t, err, ErrTruncated)

	require.NoError(t, WriteHeader(b, 0, Header{Size: 100, Prev: NoPrev}))
	_, err = ReadHeader(b, 0)
	require.ErrorIs(t, err, ErrBadHeader, "size overruns buffer")

	require.NoError(t, WriteHeader(b, 0, Header{Size: 4, Prev: 16}))
	_, err = ReadHeader(b, 0)
	require.ErrorIs(t, err, ErrBadHeader, "prev must precede the block")

	require.NoError(t, WriteHeader(b, 0, Header{Size: 4, Prev: NoPrev}))
	b[FlagsOffset] = 0x80
	_, err = ReadHeader(b, 0)
	require.ErrorIs(t, err, ErrBadHeader, "unknown flag bits")
}

func TestWriteHeaderTruncated(t *testing.T) {
	b := make([]byte, HeaderSize-1)
	require.ErrorIs(t, WriteHeader(b, 0, Header{}), ErrTruncated)
	require.ErrorIs(t, SetPrev(b, 0, 0), ErrTruncated)
}

func TestPayloadOffsets(t *testing.T) {
	require.Equal(t, HeaderSize, PayloadOffset(0))
	require.Equal(t, 40, HeaderOffset(40+HeaderSize))
}
