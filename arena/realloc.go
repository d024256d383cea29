package arena

import (
	"fmt"
)

// Realloc resizes the block at ref to hold at least n bytes.
//
//   - Realloc(NilRef, n) behaves like Alloc(n).
//   - Realloc(ref, 0) frees the block and returns NilRef.
//   - If the block already holds n bytes, ref and its payload are returned
//     unchanged; blocks never shrink.
//   - Otherwise a new block is allocated, the old payload is copied into it
//     and the old block is freed. If no block fits, the original block is
//     left live and intact and ErrNoSpace is returned.
//
// The size check, allocation, copy and release happen under one lock hold,
// so no other caller can observe or disturb the block in between.
func (a *Arena) Realloc(ref Ref, n int) (Ref, []byte, error) {
	if a == nil {
		return NilRef, nil, ErrClosed
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkOpenLocked(); err != nil {
		return NilRef, nil, err
	}
	a.stats.reallocCalls++

	if ref == NilRef {
		return a.allocLocked(n)
	}
	if n < 0 {
		return NilRef, nil, fmt.Errorf("%w: %d", ErrNegativeSize, n)
	}

	off, h, err := a.resolveLocked(ref)
	if err != nil {
		return NilRef, nil, err
	}
	if n == 0 {
		if err := a.freeLocked(off); err != nil {
			return NilRef, nil, err
		}
		return NilRef, nil, nil
	}
	if n <= int(h.Size) {
		return ref, a.payload(off, h.Size), nil
	}

	newRef, p, err := a.allocLocked(n)
	if err != nil {
		return NilRef, nil, err
	}
	copy(p, a.payload(off, h.Size))
	if err := a.freeLocked(off); err != nil {
		return NilRef, nil, err
	}
	a.log.Debug("realloc", "from", uint32(ref), "to", uint32(newRef), "request", n, "copied", h.Size)
	return newRef, p, nil
}
