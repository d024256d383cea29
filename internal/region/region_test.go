package region

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReserveHeap(t *testing.T) {
	r, err := Reserve(4096, Heap)
	require.NoError(t, err)
	require.Equal(t, Heap, r.Kind())
	require.Len(t, r.Bytes(), 4096)
	for _, b := range r.Bytes() {
		require.Zero(t, b)
	}

	require.NoError(t, r.Release())
	require.Nil(t, r.Bytes())
	require.NoError(t, r.Release(), "second release is a no-op")
}

func TestReserveRejectsBadSize(t *testing.T) {
	_, err := Reserve(0, Heap)
	require.ErrorIs(t, err, ErrSize)

	_, err = Reserve(-16, Mmap)
	require.ErrorIs(t, err, ErrSize)
}

func TestReserveUnknownKind(t *testing.T) {
	_, err := Reserve(64, Kind(42))
	require.Error(t, err)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("MMAP")
	require.NoError(t, err)
	require.Equal(t, Mmap, k)

	k, err = ParseKind("")
	require.NoError(t, err)
	require.Equal(t, Heap, k)

	_, err = ParseKind("shm")
	require.Error(t, err)

	require.Equal(t, "heap", Heap.String())
	require.Equal(t, "Kind(7)", Kind(7).String())
}

func TestReleaseNilRegion(t *testing.T) {
	var r *Region
	require.NoError(t, r.Release())
}
