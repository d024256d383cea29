package arena

import "errors"

var (
	// ErrNoSpace indicates that no free block large enough was found.
	ErrNoSpace = errors.New("arena: no free block large enough")

	// ErrBadRef indicates a reference that is not the payload of a live block.
	ErrBadRef = errors.New("arena: bad block reference")

	// ErrDoubleFree indicates a release of a block that is already free.
	ErrDoubleFree = errors.New("arena: block already free")

	// ErrClosed indicates use of a closed or uninitialized arena.
	ErrClosed = errors.New("arena: closed")

	// ErrNegativeSize indicates a negative request size.
	ErrNegativeSize = errors.New("arena: negative size")

	// ErrCapacity indicates an arena capacity that cannot hold a block header
	// or exceeds MaxCapacity.
	ErrCapacity = errors.New("arena: invalid capacity")

	// ErrReserve indicates the backing buffer could not be reserved.
	ErrReserve = errors.New("arena: backing reservation failed")

	// ErrCorrupt indicates allocator metadata that violates its invariants.
	ErrCorrupt = errors.New("arena: corrupt metadata")
)
