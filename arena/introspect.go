package arena

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/verify"
)

// Block describes one block in physical order.
type Block struct {
	Ref  Ref // payload reference
	Off  int // header offset
	Size int // usable bytes
	Free bool
}

// Bytes returns the payload of the live block at ref.
func (a *Arena) Bytes(ref Ref) ([]byte, error) {
	if a == nil {
		return nil, ErrClosed
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkOpenLocked(); err != nil {
		return nil, err
	}
	off, h, err := a.resolveLocked(ref)
	if err != nil {
		return nil, err
	}
	return a.payload(off, h.Size), nil
}

// UsableSize returns the usable payload size of the live block at ref.
func (a *Arena) UsableSize(ref Ref) (int, error) {
	if a == nil {
		return 0, ErrClosed
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkOpenLocked(); err != nil {
		return 0, err
	}
	_, h, err := a.resolveLocked(ref)
	if err != nil {
		return 0, err
	}
	return int(h.Size), nil
}

// Walk calls fn for every block in physical order until fn returns false.
// fn runs with the arena locked and must not call back into it.
func (a *Arena) Walk(fn func(Block) bool) error {
	if a == nil {
		return ErrClosed
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkOpenLocked(); err != nil {
		return err
	}
	for off := 0; off < len(a.data); {
		h, err := format.ReadHeader(a.data, off)
		if err != nil {
			return a.corrupt(err)
		}
		b := Block{
			Ref:  Ref(format.PayloadOffset(off)),
			Off:  off,
			Size: int(h.Size),
			Free: h.Free,
		}
		if !fn(b) {
			return nil
		}
		off = h.End(off)
	}
	return nil
}

// Check validates the arena image and cross-checks it against the free
// index and the live-block set. It returns nil or an error wrapping
// ErrCorrupt.
func (a *Arena) Check() error {
	if a == nil {
		return ErrClosed
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkOpenLocked(); err != nil {
		return err
	}

	entries := a.index.Entries()
	free := make(map[uint32]uint32, len(entries))
	var freeBytes int64
	for _, e := range entries {
		free[e.Off] = e.Size
		freeBytes += int64(e.Size)
	}
	opts := verify.Options{Coalesced: a.opts.Coalesce == CoalesceImmediate}
	if err := verify.AllInvariants(a.data, free, opts); err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	blocks, err := verify.Chain(a.data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	used := 0
	var usedBytes int64
	for _, b := range blocks {
		if b.Free {
			continue
		}
		if _, ok := a.live[uint32(b.Off)]; !ok {
			return fmt.Errorf("%w: in-use block 0x%X not tracked as live", ErrCorrupt, b.Off)
		}
		used++
		usedBytes += int64(b.Size)
	}
	if used != len(a.live) {
		return fmt.Errorf("%w: %d live entries, %d in-use blocks", ErrCorrupt, len(a.live), used)
	}
	if usedBytes != a.stats.bytesInUse || freeBytes != a.stats.bytesFree {
		return fmt.Errorf("%w: byte tallies in-use %d/%d free %d/%d", ErrCorrupt,
			a.stats.bytesInUse, usedBytes, a.stats.bytesFree, freeBytes)
	}
	return nil
}
