// Package format describes the in-band block header that precedes every
// payload inside an arena. The layout is fixed and little-endian so an arena
// image can be walked and validated from its raw bytes alone.
package format

const (
	// HeaderSize is the size of a block header in bytes.
	//
	// Layout (little-endian):
	//
	//	Offset  Size  Description
	//	0x00    4     Usable size: payload bytes, excluding this header.
	//	0x04    4     Flags. Bit 0 set => block is free.
	//	0x08    4     Offset of the physically preceding header, or NoPrev.
	HeaderSize = 12

	// SizeOffset is the offset of the usable-size field.
	SizeOffset = 0x00

	// FlagsOffset is the offset of the flags field.
	FlagsOffset = 0x04

	// PrevOffset is the offset of the previous-block field.
	PrevOffset = 0x08

	// FlagFree marks a block as free.
	FlagFree uint32 = 1 << 0

	// knownFlags is the set of flag bits a valid header may carry.
	knownFlags = FlagFree

	// NoPrev marks the first block of an arena, which has no predecessor.
	NoPrev uint32 = 0xFFFFFFFF

	// Alignment is the granularity requests are rounded up to.
	Alignment = 4

	// AlignmentMask is Alignment-1, used for round-up arithmetic.
	AlignmentMask = Alignment - 1
)
