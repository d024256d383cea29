package arena

import (
	"github.com/joshuapare/heapkit/internal/format"
)

// Free releases the block whose payload starts at ref. Freeing NilRef is a
// no-op. A reference that is not a live block reports ErrBadRef or
// ErrDoubleFree and leaves the arena unchanged.
func (a *Arena) Free(ref Ref) error {
	if ref == NilRef {
		return nil
	}
	if a == nil {
		return ErrClosed
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkOpenLocked(); err != nil {
		return err
	}
	a.stats.freeCalls++
	off, _, err := a.resolveLocked(ref)
	if err != nil {
		return err
	}
	return a.freeLocked(off)
}

// freeLocked marks the live block at off free and re-indexes it, merging
// with free neighbours when coalescing is enabled. The header is re-read
// because splitting a neighbour may have rewritten its prev field.
func (a *Arena) freeLocked(off int) error {
	h, err := format.ReadHeader(a.data, off)
	if err != nil {
		return a.corrupt(err)
	}
	delete(a.live, uint32(off))
	a.stats.bytesInUse -= int64(h.Size)

	h.Free = true
	if a.opts.Coalesce == CoalesceImmediate {
		if off, h, err = a.coalesceLocked(off, h); err != nil {
			return err
		}
	}
	if err := format.WriteHeader(a.data, off, h); err != nil {
		return a.corrupt(err)
	}
	if err := a.pushFree(off, h.Size); err != nil {
		return err
	}
	a.log.Debug("free", "block", off, "usable", h.Size)
	return nil
}

// coalesceLocked absorbs a free successor into the block at off, then lets
// a free predecessor absorb the result. It returns the merged block's offset
// and header; the caller writes the header and indexes the block.
func (a *Arena) coalesceLocked(off int, h format.Header) (int, format.Header, error) {
	// Forward: the next block starts right after this payload.
	if next := h.End(off); next < len(a.data) {
		nh, err := format.ReadHeader(a.data, next)
		if err != nil {
			return 0, h, a.corrupt(err)
		}
		if nh.Free {
			if _, err := a.removeFree(next); err != nil {
				return 0, h, err
			}
			h.Size += format.HeaderSize + nh.Size
			a.stats.coalesceForward++
			a.log.Debug("coalesce forward", "block", off, "absorbed", next)
		}
	}

	// Backward: the prev field names the block physically before this one.
	if h.HasPrev() {
		prev := int(h.Prev)
		ph, err := format.ReadHeader(a.data, prev)
		if err != nil {
			return 0, h, a.corrupt(err)
		}
		if ph.Free {
			if _, err := a.removeFree(prev); err != nil {
				return 0, h, err
			}
			a.log.Debug("coalesce backward", "block", prev, "absorbed", off)
			ph.Size += format.HeaderSize + h.Size
			off, h = prev, ph
			a.stats.coalesceBackward++
		}
	}

	if next := h.End(off); next < len(a.data) {
		if err := format.SetPrev(a.data, next, uint32(off)); err != nil {
			return 0, h, a.corrupt(err)
		}
	}
	return off, h, nil
}
