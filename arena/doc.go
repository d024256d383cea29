// Package arena implements a lock-guarded allocator over one pre-reserved
// byte arena.
//
// # Overview
//
// An Arena owns a single contiguous backing buffer, a size-ordered index of
// free blocks, and one mutex. Every block in the buffer is preceded by a
// 12-byte in-band header recording its usable size, its free/in-use state
// and the offset of the block physically before it. At construction the
// whole buffer is one free block; allocations carve it up by splitting.
//
//	a, err := arena.New(1<<20, nil)
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	ref, buf, err := a.Alloc(128)
//	if err != nil {
//	    return err // errors.Is(err, arena.ErrNoSpace)
//	}
//	copy(buf, payload)
//
//	ref, buf, err = a.Realloc(ref, 512)
//	...
//	err = a.Free(ref)
//
// # References
//
// Alloc returns a Ref, the offset of the payload inside the arena, together
// with a slice over the payload. NilRef (0) is never a valid payload and is
// the "no allocation" marker: Free(NilRef) is a no-op and Realloc(NilRef, n)
// behaves like Alloc(n). Slices stay valid until the block is freed or moved
// by Realloc, and until the arena is closed.
//
// # Allocation
//
// Requests are rounded up to a multiple of 4 bytes. The free index is a
// binary min-heap keyed on usable size:
//
//   - FitBest (default) takes the smallest free block that covers the request.
//   - FitSmallest only looks at the smallest free block and fails when it is
//     too small, even if larger blocks exist.
//
// A block with room for another header beyond the request is split and the
// tail goes back to the index. Otherwise the block is issued whole, keeping
// its larger usable size. Payloads are zeroed before they are handed out.
//
// # Release and coalescing
//
// CoalesceNone (default) marks a released block free and re-indexes it; free
// neighbours are never merged, so fragmentation only grows. CoalesceImmediate
// merges a released block with free physical neighbours on both sides.
//
// # Caller errors
//
// Freeing or resizing a reference that is not a live block payload reports
// ErrBadRef, and releasing a block twice reports ErrDoubleFree; neither
// touches allocator state. After Close every operation reports ErrClosed.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Each call, Realloc included, is a
// single critical section on the arena's mutex.
package arena
