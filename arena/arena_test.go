package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_SeedsOneFreeBlock(t *testing.T) {
	a := newTestArena(t, 1024, nil)

	require.Equal(t, 1024, a.Capacity())
	bs := blocks(t, a)
	require.Len(t, bs, 1)
	require.Equal(t, Block{Ref: HeaderSize, Off: 0, Size: 1024 - HeaderSize, Free: true}, bs[0])

	s := a.Stats()
	require.Equal(t, 1, s.BlocksFree)
	require.Zero(t, s.BlocksUsed)
	require.Equal(t, int64(1024-HeaderSize), s.BytesFree)
	require.Equal(t, 1024-HeaderSize, s.LargestFree)
	require.Equal(t, "heap", s.Backing)
	requireCheck(t, a)
}

func TestNew_UnalignedCapacity(t *testing.T) {
	a := newTestArena(t, 1023, nil)
	ref, buf, err := a.Alloc(5)
	require.NoError(t, err)
	require.Len(t, buf, 8)
	require.Equal(t, Ref(HeaderSize), ref)
	requireCheck(t, a)
}

func TestNew_RejectsBadCapacity(t *testing.T) {
	_, err := New(HeaderSize-1, nil)
	require.ErrorIs(t, err, ErrCapacity)

	_, err = New(-1, nil)
	require.ErrorIs(t, err, ErrCapacity)

	a, err := New(HeaderSize, nil)
	require.NoError(t, err, "a header-only arena is valid")
	defer a.Close()

	ref, buf, err := a.Alloc(0)
	require.NoError(t, err)
	require.Equal(t, Ref(HeaderSize), ref)
	require.Empty(t, buf)
}

func TestMustNew(t *testing.T) {
	require.Panics(t, func() { MustNew(0, nil) })
	a := MustNew(64, nil)
	require.NoError(t, a.Close())
}

func TestClose(t *testing.T) {
	a, err := New(256, nil)
	require.NoError(t, err)
	ref, _, err := a.Alloc(16)
	require.NoError(t, err)

	require.NoError(t, a.Close())
	require.NoError(t, a.Close(), "second close is a no-op")

	_, _, err = a.Alloc(16)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, a.Free(ref), ErrClosed)
	_, _, err = a.Realloc(ref, 32)
	require.ErrorIs(t, err, ErrClosed)
	_, err = a.Bytes(ref)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, a.Check(), ErrClosed)
	require.ErrorIs(t, a.Walk(func(Block) bool { return true }), ErrClosed)
	require.Zero(t, a.Capacity())
	require.NoError(t, a.Free(NilRef), "freeing NilRef stays a no-op")
}

func TestClose_ResetsByteTallies(t *testing.T) {
	a, err := New(1024, nil)
	require.NoError(t, err)
	_, _, err = a.Alloc(100)
	require.NoError(t, err)
	require.NotZero(t, a.Stats().BytesFree)
	require.NotZero(t, a.Stats().BytesInUse)

	require.NoError(t, a.Close())
	s := a.Stats()
	require.Zero(t, s.Capacity)
	require.Zero(t, s.BlocksFree)
	require.Zero(t, s.BlocksUsed)
	require.Zero(t, s.BytesFree)
	require.Zero(t, s.BytesInUse)
	require.Zero(t, s.Utilization())
	require.Zero(t, s.Fragmentation())
}

func TestZeroValueArenaReportsClosed(t *testing.T) {
	var a Arena
	_, _, err := a.Alloc(8)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, a.Free(HeaderSize), ErrClosed)

	var nilArena *Arena
	_, _, err = nilArena.Alloc(8)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, nilArena.Free(HeaderSize), ErrClosed)
	_, _, err = nilArena.Realloc(NilRef, 8)
	require.ErrorIs(t, err, ErrClosed)
	require.NoError(t, nilArena.Close())
	require.Equal(t, Stats{}, nilArena.Stats())
	require.Equal(t, Options{}, nilArena.Options())
}

func TestIndependentArenas(t *testing.T) {
	a := newTestArena(t, 512, nil)
	b := newTestArena(t, 512, &Options{Coalesce: CoalesceImmediate})

	ra, pa, err := a.Alloc(64)
	require.NoError(t, err)
	rb, pb, err := b.Alloc(64)
	require.NoError(t, err)
	require.Equal(t, ra, rb, "each arena has its own address space")

	fill(pa, 0xAA)
	fill(pb, 0xBB)
	requireFilled(t, pa, 0xAA, "arena a")

	require.NoError(t, a.Free(ra))
	_, err = b.Bytes(rb)
	require.NoError(t, err, "freeing in one arena does not affect the other")
}

func TestOptionsParsing(t *testing.T) {
	f, err := ParseFit("smallest")
	require.NoError(t, err)
	require.Equal(t, FitSmallest, f)
	_, err = ParseFit("worst")
	require.Error(t, err)

	c, err := ParseCoalesce("IMMEDIATE")
	require.NoError(t, err)
	require.Equal(t, CoalesceImmediate, c)
	_, err = ParseCoalesce("lazy")
	require.Error(t, err)

	bk, err := ParseBacking("mmap")
	require.NoError(t, err)
	require.Equal(t, BackingMmap, bk)
	_, err = ParseBacking("tmpfs")
	require.Error(t, err)

	require.Equal(t, "best", FitBest.String())
	require.Equal(t, "none", CoalesceNone.String())
	require.Equal(t, "mmap", BackingMmap.String())
	require.Equal(t, "Fit(9)", Fit(9).String())
}
