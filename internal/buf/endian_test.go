package buf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEndianHelpers(t *testing.T) {
	data := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}

	require.Equal(t, uint32(0x67452301), U32LE(data, 0))
	require.Equal(t, uint32(0xefcdab89), U32LE(data, 4))

	require.True(t, PutU32LE(data, 4, 0xdeadbeef))
	require.Equal(t, []byte{0xef, 0xbe, 0xad, 0xde}, data[4:8])
	require.Equal(t, uint32(0xdeadbeef), U32LE(data, 4))
}

func TestEndianShortReads(t *testing.T) {
	short := []byte{0xAA, 0xBB}
	require.Zero(t, U32LE(short, 0))
	require.Zero(t, U32LE(short, -1))
	require.False(t, PutU32LE(short, 0, 1))
	require.Equal(t, []byte{0xAA, 0xBB}, short, "failed write must not touch the buffer")
}

func TestZero(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	Zero(data[1:3])
	require.Equal(t, []byte{1, 0, 0, 4}, data)
}
