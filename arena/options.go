package arena

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joshuapare/heapkit/internal/freeindex"
	"github.com/joshuapare/heapkit/internal/region"
)

// Runtime debug flag for allocation logging - controlled by HEAPKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("HEAPKIT_LOG_ALLOC") != ""

// Fit selects how Alloc picks a free block.
type Fit int

const (
	// FitBest takes the smallest free block that covers the request.
	FitBest Fit = iota
	// FitSmallest only considers the smallest free block.
	FitSmallest
)

// Coalesce selects what Free does with free physical neighbours.
type Coalesce int

const (
	// CoalesceNone never merges blocks.
	CoalesceNone Coalesce = iota
	// CoalesceImmediate merges a released block with free neighbours on both sides.
	CoalesceImmediate
)

// Backing selects where the arena buffer lives.
type Backing int

const (
	// BackingHeap uses a Go byte slice.
	BackingHeap Backing = iota
	// BackingMmap uses an anonymous private mapping where the platform has one.
	BackingMmap
)

// Options configures an Arena. The zero value is valid and equals DefaultOptions.
type Options struct {
	Fit      Fit
	Coalesce Coalesce
	Backing  Backing

	// IndexHint preallocates room for this many free blocks. The index grows
	// past it on demand. Zero selects 1024.
	IndexHint int

	// Logger receives allocator events. Nil discards them unless
	// HEAPKIT_LOG_ALLOC is set, in which case debug records go to stderr.
	Logger *slog.Logger
}

// DefaultOptions is used when New is given nil options.
var DefaultOptions = Options{
	Fit:       FitBest,
	Coalesce:  CoalesceNone,
	Backing:   BackingHeap,
	IndexHint: freeindex.DefaultHint,
}

func (o Options) logger() *slog.Logger {
	switch {
	case o.Logger != nil:
		return o.Logger
	case logAlloc:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

func (b Backing) kind() region.Kind {
	if b == BackingMmap {
		return region.Mmap
	}
	return region.Heap
}

func (f Fit) String() string {
	switch f {
	case FitBest:
		return "best"
	case FitSmallest:
		return "smallest"
	default:
		return fmt.Sprintf("Fit(%d)", int(f))
	}
}

func (c Coalesce) String() string {
	switch c {
	case CoalesceNone:
		return "none"
	case CoalesceImmediate:
		return "immediate"
	default:
		return fmt.Sprintf("Coalesce(%d)", int(c))
	}
}

func (b Backing) String() string {
	switch b {
	case BackingHeap:
		return "heap"
	case BackingMmap:
		return "mmap"
	default:
		return fmt.Sprintf("Backing(%d)", int(b))
	}
}

// ParseFit maps "best" or "smallest" to a Fit.
func ParseFit(s string) (Fit, error) {
	switch strings.ToLower(s) {
	case "best", "":
		return FitBest, nil
	case "smallest":
		return FitSmallest, nil
	default:
		return FitBest, fmt.Errorf("arena: unknown fit policy %q", s)
	}
}

// ParseCoalesce maps "none" or "immediate" to a Coalesce.
func ParseCoalesce(s string) (Coalesce, error) {
	switch strings.ToLower(s) {
	case "none", "":
		return CoalesceNone, nil
	case "immediate":
		return CoalesceImmediate, nil
	default:
		return CoalesceNone, fmt.Errorf("arena: unknown coalesce strategy %q", s)
	}
}

// ParseBacking maps "heap" or "mmap" to a Backing.
func ParseBacking(s string) (Backing, error) {
	k, err := region.ParseKind(s)
	if err != nil {
		return BackingHeap, fmt.Errorf("arena: unknown backing %q", s)
	}
	if k == region.Mmap {
		return BackingMmap, nil
	}
	return BackingHeap, nil
}
