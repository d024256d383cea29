package arena

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/freeindex"
)

// Alloc reserves at least n bytes and returns the payload reference and a
// zeroed slice over the block's whole usable size, which may exceed n.
// When no free block can hold the request it returns NilRef and ErrNoSpace.
func (a *Arena) Alloc(n int) (Ref, []byte, error) {
	if a == nil {
		return NilRef, nil, ErrClosed
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkOpenLocked(); err != nil {
		return NilRef, nil, err
	}
	a.stats.allocCalls++
	return a.allocLocked(n)
}

func (a *Arena) allocLocked(n int) (Ref, []byte, error) {
	if n < 0 {
		return NilRef, nil, fmt.Errorf("%w: %d", ErrNegativeSize, n)
	}
	if n > len(a.data)-format.HeaderSize {
		return NilRef, nil, a.noSpace(n)
	}
	need := format.Align4(n)

	e, ok := a.pickLocked(uint32(need))
	if !ok {
		return NilRef, nil, a.noSpace(need)
	}
	a.stats.bytesFree -= int64(e.Size)

	off := int(e.Off)
	h, err := format.ReadHeader(a.data, off)
	if err != nil {
		return NilRef, nil, a.corrupt(err)
	}
	if !h.Free || h.Size != e.Size {
		return NilRef, nil, a.corrupt(fmt.Errorf("indexed block 0x%X: header size %d free %v, index size %d",
			off, h.Size, h.Free, e.Size))
	}

	// Split only when the tail can hold its own header and at least one byte.
	if int(h.Size) > need+format.HeaderSize {
		if err := a.splitLocked(off, h, need); err != nil {
			return NilRef, nil, err
		}
		h.Size = uint32(need)
	}

	h.Free = false
	if err := format.WriteHeader(a.data, off, h); err != nil {
		return NilRef, nil, a.corrupt(err)
	}
	a.live[uint32(off)] = struct{}{}
	a.stats.bytesInUse += int64(h.Size)

	p := a.payload(off, h.Size)
	buf.Zero(p)

	ref := Ref(format.PayloadOffset(off))
	a.log.Debug("alloc", "ref", uint32(ref), "request", n, "usable", h.Size)
	return ref, p, nil
}

// pickLocked removes a block that can hold need bytes from the index
// according to the fit policy. An undersized candidate stays indexed.
func (a *Arena) pickLocked(need uint32) (freeindex.Entry, bool) {
	if a.opts.Fit == FitSmallest {
		e, ok := a.index.Peek()
		if !ok || e.Size < need {
			return freeindex.Entry{}, false
		}
		return a.index.PopMin()
	}
	return a.index.PopFit(need)
}

// splitLocked carves the tail of the free block at off into a new free
// block, leaving need bytes for the block being issued.
func (a *Arena) splitLocked(off int, h format.Header, need int) error {
	tail := off + format.HeaderSize + need
	tailSize := uint32(int(h.Size) - need - format.HeaderSize)

	if err := format.WriteHeader(a.data, tail, format.Header{
		Size: tailSize,
		Free: true,
		Prev: uint32(off),
	}); err != nil {
		return a.corrupt(err)
	}
	if next := h.End(off); next < len(a.data) {
		if err := format.SetPrev(a.data, next, uint32(tail)); err != nil {
			return a.corrupt(err)
		}
	}
	if err := a.pushFree(tail, tailSize); err != nil {
		return err
	}
	a.stats.splits++
	a.log.Debug("split", "block", off, "keep", need, "tail", tail, "tail_size", tailSize)
	return nil
}

func (a *Arena) noSpace(need int) error {
	a.stats.failedAllocs++
	if a.log.Enabled(context.Background(), slog.LevelWarn) {
		largest, _ := a.index.Max()
		a.log.Warn("no suitable block",
			"need", need,
			"largest_free", largest.Size,
			"free_blocks", a.index.Len(),
			"fit", a.opts.Fit.String())
	}
	return fmt.Errorf("%w: need %d bytes", ErrNoSpace, need)
}
