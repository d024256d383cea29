// Package freeindex implements the size-ordered index of free blocks used by
// the arena allocator.
//
// The index is a binary min-heap keyed on usable size, built on
// container/heap, plus an offset map so a specific block can be found and
// removed in O(log n) when neighbours are merged. A B-tree ordered by
// (size, offset) mirrors the heap so the smallest block covering a request
// and the largest block are found in O(log n) as well. The heap is backed by
// a growable slice: the capacity hint only preallocates, it never limits how
// many blocks can be tracked.
//
// Ordering rules, inherited from container/heap:
//
//   - Push sifts the new entry up only while it is strictly smaller than its
//     parent, so an equal-size parent is never displaced.
//   - PopMin moves the last entry to the root and sifts it down, picking the
//     right child only when it is strictly smaller than the left one and
//     swapping only while the moved entry is strictly larger.
//
// An Index is not safe for concurrent use; the arena serializes access.
package freeindex

import (
	"cmp"
	"container/heap"
	"errors"
	"slices"

	"github.com/google/btree"
)

// DefaultHint is the default number of preallocated entries.
const DefaultHint = 1024

// treeDegree is the B-tree node degree of the size-ordered mirror.
const treeDegree = 32

// ErrDuplicate indicates a block offset that is already tracked.
var ErrDuplicate = errors.New("freeindex: block already tracked")

// Entry is a free block: header offset and usable size.
type Entry struct {
	Off  uint32
	Size uint32
}

// bySizeLess orders entries by size, then offset.
func bySizeLess(a, b Entry) bool {
	if a.Size != b.Size {
		return a.Size < b.Size
	}
	return a.Off < b.Off
}

type item struct {
	Entry
	pos int // position in the heap slice, -1 once popped
}

// entryHeap implements heap.Interface as a min-heap on Size.
type entryHeap []*item

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool { return h[i].Size < h[j].Size }

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].pos = i
	h[j].pos = j
}

func (h *entryHeap) Push(x any) {
	it := x.(*item) //nolint:errcheck // heap.Interface contract guarantees type
	it.pos = len(*h)
	*h = append(*h, it)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.pos = -1
	*h = old[:n-1]
	return it
}

// Index is the free-list priority index.
type Index struct {
	h      entryHeap
	byOff  map[uint32]*item
	bySize *btree.BTreeG[Entry]
	hint   int
	peak   int
}

// New returns an empty index with room for hint entries before the backing
// slice has to grow. A non-positive hint selects DefaultHint.
func New(hint int) *Index {
	if hint <= 0 {
		hint = DefaultHint
	}
	return &Index{
		h:      make(entryHeap, 0, hint),
		byOff:  make(map[uint32]*item, hint),
		bySize: btree.NewG(treeDegree, bySizeLess),
		hint:   hint,
	}
}

// Len returns the number of tracked blocks.
func (ix *Index) Len() int { return len(ix.h) }

// Peak returns the largest number of blocks tracked at once.
func (ix *Index) Peak() int { return ix.peak }

// Hint returns the preallocation hint the index was created with.
func (ix *Index) Hint() int { return ix.hint }

// Push starts tracking the free block at off.
func (ix *Index) Push(off, size uint32) error {
	if _, ok := ix.byOff[off]; ok {
		return ErrDuplicate
	}
	it := &item{Entry: Entry{Off: off, Size: size}}
	heap.Push(&ix.h, it)
	ix.byOff[off] = it
	ix.bySize.ReplaceOrInsert(it.Entry)
	if len(ix.h) > ix.peak {
		ix.peak = len(ix.h)
	}
	return nil
}

// Peek returns the smallest block without removing it.
func (ix *Index) Peek() (Entry, bool) {
	if len(ix.h) == 0 {
		return Entry{}, false
	}
	return ix.h[0].Entry, true
}

// Max returns the largest tracked block.
func (ix *Index) Max() (Entry, bool) {
	return ix.bySize.Max()
}

// PopMin removes and returns the smallest block.
func (ix *Index) PopMin() (Entry, bool) {
	if len(ix.h) == 0 {
		return Entry{}, false
	}
	it := heap.Pop(&ix.h).(*item) //nolint:errcheck // only *item is ever pushed
	delete(ix.byOff, it.Off)
	ix.bySize.Delete(it.Entry)
	return it.Entry, true
}

// PopFit removes and returns the smallest block whose size is at least need,
// choosing the lowest offset among equal sizes. A miss leaves the index
// unchanged.
func (ix *Index) PopFit(need uint32) (Entry, bool) {
	var found Entry
	ok := false
	ix.bySize.AscendGreaterOrEqual(Entry{Size: need}, func(e Entry) bool {
		found, ok = e, true
		return false
	})
	if !ok {
		return Entry{}, false
	}
	return ix.Remove(found.Off)
}

// Contains reports whether the block at off is tracked.
func (ix *Index) Contains(off uint32) bool {
	_, ok := ix.byOff[off]
	return ok
}

// Remove stops tracking the block at off and returns its entry.
func (ix *Index) Remove(off uint32) (Entry, bool) {
	it, ok := ix.byOff[off]
	if !ok {
		return Entry{}, false
	}
	heap.Remove(&ix.h, it.pos)
	delete(ix.byOff, off)
	ix.bySize.Delete(it.Entry)
	return it.Entry, true
}

// Entries returns a snapshot of all tracked blocks ordered by offset.
func (ix *Index) Entries() []Entry {
	out := make([]Entry, 0, len(ix.h))
	for _, it := range ix.h {
		out = append(out, it.Entry)
	}
	slices.SortFunc(out, func(a, b Entry) int { return cmp.Compare(a.Off, b.Off) })
	return out
}

// Reset drops every tracked block.
func (ix *Index) Reset() {
	clear(ix.h)
	ix.h = ix.h[:0]
	clear(ix.byOff)
	ix.bySize.Clear(false)
}
