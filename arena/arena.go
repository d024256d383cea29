package arena

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/freeindex"
	"github.com/joshuapare/heapkit/internal/region"
)

// HeaderSize is the number of bytes of in-band metadata before every payload.
const HeaderSize = format.HeaderSize

// MaxCapacity is the largest arena size; block offsets and sizes are uint32.
const MaxCapacity uint64 = math.MaxUint32

// Ref is the offset of a payload inside its arena.
type Ref uint32

// NilRef is the "no allocation" marker.
const NilRef Ref = 0

// Arena is an allocator over one reserved byte buffer.
type Arena struct {
	mu sync.Mutex

	region *region.Region
	data   []byte

	// Free blocks by usable size, keyed by header offset.
	index *freeindex.Index

	// Header offsets of in-use blocks; used to reject foreign references.
	live map[uint32]struct{}

	opts Options
	log  *slog.Logger

	stats counters
}

// New reserves capacity bytes and seeds the arena with one free block
// spanning all of it minus its header. Nil opts selects DefaultOptions.
func New(capacity int, opts *Options) (*Arena, error) {
	if opts == nil {
		opts = &DefaultOptions
	}
	if capacity < format.HeaderSize || uint64(capacity) > MaxCapacity {
		return nil, fmt.Errorf("%w: %d (must be between %d and %d)",
			ErrCapacity, capacity, format.HeaderSize, MaxCapacity)
	}

	r, err := region.Reserve(capacity, opts.Backing.kind())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReserve, err)
	}

	a := &Arena{
		region: r,
		data:   r.Bytes(),
		index:  freeindex.New(opts.IndexHint),
		live:   make(map[uint32]struct{}),
		opts:   *opts,
		log:    opts.logger(),
	}

	seed := uint32(capacity - format.HeaderSize)
	if err := format.WriteHeader(a.data, 0, format.Header{Size: seed, Free: true, Prev: format.NoPrev}); err != nil {
		_ = r.Release()
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if err := a.pushFree(0, seed); err != nil {
		_ = r.Release()
		return nil, err
	}

	a.log.Debug("arena initialized",
		"capacity", capacity,
		"backing", r.Kind().String(),
		"fit", a.opts.Fit.String(),
		"coalesce", a.opts.Coalesce.String())
	return a, nil
}

// MustNew is like New but panics when the arena cannot be created.
func MustNew(capacity int, opts *Options) *Arena {
	a, err := New(capacity, opts)
	if err != nil {
		panic(err)
	}
	return a
}

// Close releases the backing buffer. Every later call reports ErrClosed and
// every payload slice handed out becomes invalid. Closing twice is a no-op.
func (a *Arena) Close() error {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.data == nil {
		return nil
	}
	a.data = nil
	a.index.Reset()
	a.live = nil
	a.stats.bytesInUse = 0
	a.stats.bytesFree = 0
	a.log.Debug("arena closed")
	return a.region.Release()
}

// Capacity returns the size of the backing buffer, or 0 once closed.
func (a *Arena) Capacity() int {
	if a == nil {
		return 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.data)
}

// Options returns the options the arena was created with.
func (a *Arena) Options() Options {
	if a == nil {
		return Options{}
	}
	return a.opts
}

// checkOpenLocked reports ErrClosed for a closed or zero-value arena.
func (a *Arena) checkOpenLocked() error {
	if a.data == nil {
		return ErrClosed
	}
	return nil
}

// resolveLocked maps a payload reference to its header offset and header.
func (a *Arena) resolveLocked(ref Ref) (int, format.Header, error) {
	if int(ref) < format.HeaderSize || int(ref) > len(a.data) {
		return 0, format.Header{}, fmt.Errorf("%w: 0x%X outside arena", ErrBadRef, ref)
	}
	off := format.HeaderOffset(int(ref))
	if _, ok := a.live[uint32(off)]; !ok {
		if a.index.Contains(uint32(off)) {
			return 0, format.Header{}, fmt.Errorf("%w: 0x%X", ErrDoubleFree, ref)
		}
		return 0, format.Header{}, fmt.Errorf("%w: 0x%X is not a live block", ErrBadRef, ref)
	}
	h, err := format.ReadHeader(a.data, off)
	if err != nil {
		return 0, format.Header{}, a.corrupt(err)
	}
	if h.Free {
		return 0, format.Header{}, a.corrupt(fmt.Errorf("live block at 0x%X flagged free", off))
	}
	return off, h, nil
}

// payload returns the payload slice of the block at off.
func (a *Arena) payload(off int, size uint32) []byte {
	p, _ := buf.Slice(a.data, format.PayloadOffset(off), int(size))
	return p
}

// pushFree adds a free block to the index and the free-byte tally.
func (a *Arena) pushFree(off int, size uint32) error {
	if err := a.index.Push(uint32(off), size); err != nil {
		return a.corrupt(fmt.Errorf("index block 0x%X: %w", off, err))
	}
	a.stats.bytesFree += int64(size)
	if a.index.Len() == a.index.Hint()+1 {
		a.log.Debug("free index grew past hint", "hint", a.index.Hint())
	}
	return nil
}

// removeFree drops a free block from the index and the free-byte tally.
func (a *Arena) removeFree(off int) (uint32, error) {
	e, ok := a.index.Remove(uint32(off))
	if !ok {
		return 0, a.corrupt(fmt.Errorf("free block 0x%X not indexed", off))
	}
	a.stats.bytesFree -= int64(e.Size)
	return e.Size, nil
}

func (a *Arena) corrupt(err error) error {
	a.log.Error("allocator metadata corrupt", "err", err)
	if errors.Is(err, ErrCorrupt) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrCorrupt, err)
}
