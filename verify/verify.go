package verify

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// ValidationError describes the first invariant violation found.
type ValidationError struct {
	Type    string
	Message string
	Offset  int // header offset, -1 when not tied to a block
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Block is one decoded block of an arena image.
type Block struct {
	Off  int // header offset
	Size int // usable payload bytes
	Free bool
	Prev int // header offset of the preceding block, -1 for the first
}

// End returns the offset one past the block's payload.
func (b Block) End() int {
	return b.Off + format.HeaderSize + b.Size
}

// Options tunes AllInvariants.
type Options struct {
	// Coalesced requires that no two adjacent blocks are free.
	Coalesced bool
}

// AllInvariants runs every check against data. free maps the header offset
// of each block the allocator tracks as free to its recorded usable size.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(data []byte, free map[uint32]uint32, opts Options) error {
	blocks, err := Chain(data)
	if err != nil {
		return err
	}
	if err := Alignment(blocks, len(data)); err != nil {
		return err
	}
	if err := FreeSet(blocks, free); err != nil {
		return err
	}
	if opts.Coalesced {
		if err := NoAdjacentFree(blocks); err != nil {
			return err
		}
	}
	return nil
}

// Chain walks the image from offset 0 and returns its blocks in physical
// order. The blocks must tile data exactly and every prev field must name
// the block that physically precedes it.
func Chain(data []byte) ([]Block, error) {
	if len(data) < format.HeaderSize {
		return nil, &ValidationError{
			Type:    "Chain",
			Message: fmt.Sprintf("image too small: %d bytes (need %d)", len(data), format.HeaderSize),
			Offset:  -1,
		}
	}

	var blocks []Block
	prev := -1
	for off := 0; off < len(data); {
		h, err := format.ReadHeader(data, off)
		if err != nil {
			return nil, &ValidationError{Type: "Chain", Message: err.Error(), Offset: off}
		}
		b := Block{Off: off, Size: int(h.Size), Free: h.Free, Prev: -1}
		if h.HasPrev() {
			b.Prev = int(h.Prev)
		}
		if b.Prev != prev {
			return nil, &ValidationError{
				Type:    "Chain",
				Message: fmt.Sprintf("prev link mismatch: field=%d, expected=%d", b.Prev, prev),
				Offset:  off,
			}
		}
		blocks = append(blocks, b)
		prev = off
		off = b.End()
	}
	// ReadHeader rejects blocks that overrun data, so the walk ends exactly
	// at len(data).
	return blocks, nil
}

// Alignment checks that usable sizes are multiples of 4 whenever the seed
// block was. An arena whose capacity leaves an unaligned seed carries that
// remainder through every split, so no check applies to it.
func Alignment(blocks []Block, capacity int) error {
	if !format.IsAligned(capacity - format.HeaderSize) {
		return nil
	}
	for _, b := range blocks {
		if !format.IsAligned(b.Size) {
			return &ValidationError{
				Type:    "Alignment",
				Message: fmt.Sprintf("usable size %d not a multiple of %d", b.Size, format.Alignment),
				Offset:  b.Off,
			}
		}
	}
	return nil
}

// FreeSet checks that free names exactly the blocks flagged free, each with
// its header's usable size.
func FreeSet(blocks []Block, free map[uint32]uint32) error {
	seen := 0
	for _, b := range blocks {
		size, tracked := free[uint32(b.Off)]
		switch {
		case b.Free && !tracked:
			return &ValidationError{Type: "FreeSet", Message: "free block not tracked", Offset: b.Off}
		case !b.Free && tracked:
			return &ValidationError{Type: "FreeSet", Message: "in-use block tracked as free", Offset: b.Off}
		case tracked && int(size) != b.Size:
			return &ValidationError{
				Type:    "FreeSet",
				Message: fmt.Sprintf("tracked size %d, header size %d", size, b.Size),
				Offset:  b.Off,
			}
		}
		if tracked {
			seen++
		}
	}
	if seen != len(free) {
		return &ValidationError{
			Type:    "FreeSet",
			Message: fmt.Sprintf("%d tracked entries do not start a block", len(free)-seen),
			Offset:  -1,
		}
	}
	return nil
}

// NoAdjacentFree checks that no two physically adjacent blocks are free.
func NoAdjacentFree(blocks []Block) error {
	for i := 1; i < len(blocks); i++ {
		if blocks[i].Free && blocks[i-1].Free {
			return &ValidationError{
				Type:    "NoAdjacentFree",
				Message: fmt.Sprintf("free block follows free block at 0x%X", blocks[i-1].Off),
				Offset:  blocks[i].Off,
			}
		}
	}
	return nil
}
