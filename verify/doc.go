// Package verify validates arena images from their raw bytes.
//
// # Overview
//
// An arena is a byte slice tiled by blocks. Each block starts with a 12-byte
// header (usable size, flags, previous-block offset) followed by its payload.
// The checks here walk that chain without trusting any allocator state, so
// they can confirm that a sequence of allocator operations left the image
// consistent.
//
// Validation categories:
//   - Chain: headers decode, blocks tile the image exactly, prev links match
//   - Alignment: usable sizes are 4-byte multiples when the seed block was
//   - FreeSet: the allocator's free index names exactly the free blocks
//   - NoAdjacentFree: no two neighbouring blocks are both free (coalescing)
//
// # Quick Start
//
//	blocks, err := verify.Chain(data)
//	if err != nil {
//	    return err
//	}
//	if err := verify.FreeSet(blocks, free); err != nil {
//	    return err
//	}
//
// Or in one call:
//
//	err := verify.AllInvariants(data, free, verify.Options{Coalesced: true})
//
// # ValidationError
//
// All checks return *ValidationError on failure:
//
//	var verr *verify.ValidationError
//	if errors.As(err, &verr) {
//	    fmt.Printf("%s at 0x%X: %s\n", verr.Type, verr.Offset, verr.Message)
//	}
package verify
