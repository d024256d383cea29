// Package region reserves the single contiguous backing buffer an arena
// carves its blocks from.
package region

import (
	"errors"
	"fmt"
	"strings"
)

// Kind selects where the backing buffer lives.
type Kind int

const (
	// Heap backs the region with an ordinary Go byte slice.
	Heap Kind = iota
	// Mmap backs the region with an anonymous private mapping. Platforms
	// without mmap fall back to Heap.
	Mmap
)

var (
	// ErrSize indicates a non-positive or unrepresentable region size.
	ErrSize = errors.New("region: invalid size")
	// ErrReserve indicates the backing storage could not be obtained.
	ErrReserve = errors.New("region: reservation failed")
)

func (k Kind) String() string {
	switch k {
	case Heap:
		return "heap"
	case Mmap:
		return "mmap"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps "heap" or "mmap" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "heap", "":
		return Heap, nil
	case "mmap":
		return Mmap, nil
	default:
		return Heap, fmt.Errorf("region: unknown backing %q", s)
	}
}

// Region is a reserved backing buffer.
type Region struct {
	data    []byte
	kind    Kind
	release func([]byte) error
}

// Reserve obtains size bytes of zeroed backing storage of the given kind.
func Reserve(size int, kind Kind) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrSize, size)
	}
	switch kind {
	case Heap:
		data, err := reserveHeap(size)
		if err != nil {
			return nil, err
		}
		return &Region{data: data, kind: Heap, release: releaseHeap}, nil
	case Mmap:
		data, actual, err := reserveMapped(size)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReserve, err)
		}
		r := &Region{data: data, kind: actual, release: releaseHeap}
		if actual == Mmap {
			r.release = releaseMapped
		}
		return r, nil
	default:
		return nil, fmt.Errorf("region: unknown kind %v", kind)
	}
}

// Bytes returns the backing buffer, or nil once released.
func (r *Region) Bytes() []byte {
	return r.data
}

// Kind reports the kind actually used, which may differ from the requested
// one when the platform lacks mmap.
func (r *Region) Kind() Kind {
	return r.kind
}

// Release returns the backing storage. Releasing twice is a no-op.
func (r *Region) Release() error {
	if r == nil || r.data == nil {
		return nil
	}
	data := r.data
	r.data = nil
	return r.release(data)
}

func reserveHeap(size int) (data []byte, err error) {
	defer func() {
		if p := recover(); p != nil {
			data, err = nil, fmt.Errorf("%w: %v", ErrReserve, p)
		}
	}()
	return make([]byte, size), nil
}

func releaseHeap([]byte) error {
	return nil
}
