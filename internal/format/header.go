package format

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
)

// Header is the decoded form of a block header.
type Header struct {
	Size uint32 // usable payload bytes
	Free bool
	Prev uint32 // offset of the preceding header, NoPrev for the first block
}

// HasPrev reports whether the block has a physical predecessor.
func (h Header) HasPrev() bool {
	return h.Prev != NoPrev
}

// End returns the offset one past the payload of the block at off.
func (h Header) End(off int) int {
	return off + HeaderSize + int(h.Size)
}

// ReadHeader decodes the header at off and checks that the block it describes
// lies inside b.
func ReadHeader(b []byte, off int) (Header, error) {
	if !buf.Has(b, off, HeaderSize) {
		return Header{}, fmt.Errorf("header at %d: %w", off, ErrTruncated)
	}
	flags := buf.U32LE(b, off+FlagsOffset)
	if flags&^knownFlags != 0 {
		return Header{}, fmt.Errorf("header at %d: unknown flags 0x%x: %w", off, flags, ErrBadHeader)
	}
	h := Header{
		Size: buf.U32LE(b, off+SizeOffset),
		Free: flags&FlagFree != 0,
		Prev: buf.U32LE(b, off+PrevOffset),
	}
	if !buf.Has(b, off+HeaderSize, int(h.Size)) {
		return Header{}, fmt.Errorf("header at %d: size %d overruns buffer of %d: %w",
			off, h.Size, len(b), ErrBadHeader)
	}
	if h.HasPrev() && int(h.Prev) >= off {
		return Header{}, fmt.Errorf("header at %d: prev %d not before block: %w", off, h.Prev, ErrBadHeader)
	}
	return h, nil
}

// WriteHeader encodes h at off.
func WriteHeader(b []byte, off int, h Header) error {
	if !buf.Has(b, off, HeaderSize) {
		return fmt.Errorf("header at %d: %w", off, ErrTruncated)
	}
	var flags uint32
	if h.Free {
		flags |= FlagFree
	}
	buf.PutU32LE(b, off+SizeOffset, h.Size)
	buf.PutU32LE(b, off+FlagsOffset, flags)
	buf.PutU32LE(b, off+PrevOffset, h.Prev)
	return nil
}

// SetPrev rewrites only the previous-block field of the header at off.
func SetPrev(b []byte, off int, prev uint32) error {
	if !buf.Has(b, off, HeaderSize) {
		return fmt.Errorf("header at %d: %w", off, ErrTruncated)
	}
	buf.PutU32LE(b, off+PrevOffset, prev)
	return nil
}

// PayloadOffset returns the payload offset of the block whose header is at off.
func PayloadOffset(off int) int {
	return off + HeaderSize
}

// HeaderOffset returns the header offset for a payload offset.
func HeaderOffset(payload int) int {
	return payload - HeaderSize
}
