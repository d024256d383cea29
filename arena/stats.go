package arena

// counters holds running allocator statistics; guarded by Arena.mu.
type counters struct {
	allocCalls       int
	freeCalls        int
	reallocCalls     int
	failedAllocs     int
	splits           int
	coalesceForward  int
	coalesceBackward int
	bytesInUse       int64 // usable bytes of live blocks
	bytesFree        int64 // usable bytes of indexed free blocks
}

// Stats is a snapshot of arena statistics.
type Stats struct {
	Capacity int    `json:"capacity"`
	Backing  string `json:"backing"`

	AllocCalls       int `json:"alloc_calls"`
	FreeCalls        int `json:"free_calls"`
	ReallocCalls     int `json:"realloc_calls"`
	FailedAllocs     int `json:"failed_allocs"`
	Splits           int `json:"splits"`
	CoalesceForward  int `json:"coalesce_forward"`
	CoalesceBackward int `json:"coalesce_backward"`

	BlocksUsed  int   `json:"blocks_used"`
	BlocksFree  int   `json:"blocks_free"`
	BytesInUse  int64 `json:"bytes_in_use"`
	BytesFree   int64 `json:"bytes_free"`
	LargestFree int   `json:"largest_free"`

	IndexLen  int `json:"index_len"`
	IndexPeak int `json:"index_peak"`
}

// Utilization returns the share of the arena handed out as payload (0.0 to 1.0).
func (s Stats) Utilization() float64 {
	if s.Capacity == 0 {
		return 0
	}
	return float64(s.BytesInUse) / float64(s.Capacity)
}

// Fragmentation returns 1 - LargestFree/BytesFree: 0 when all free space is
// one block, approaching 1 as it splinters.
func (s Stats) Fragmentation() float64 {
	if s.BytesFree == 0 {
		return 0
	}
	return 1 - float64(s.LargestFree)/float64(s.BytesFree)
}

// Stats returns a snapshot of the arena's statistics.
func (a *Arena) Stats() Stats {
	if a == nil {
		return Stats{}
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Stats{
		Capacity:         len(a.data),
		AllocCalls:       a.stats.allocCalls,
		FreeCalls:        a.stats.freeCalls,
		ReallocCalls:     a.stats.reallocCalls,
		FailedAllocs:     a.stats.failedAllocs,
		Splits:           a.stats.splits,
		CoalesceForward:  a.stats.coalesceForward,
		CoalesceBackward: a.stats.coalesceBackward,
		BytesInUse:       a.stats.bytesInUse,
		BytesFree:        a.stats.bytesFree,
	}
	if a.region != nil {
		s.Backing = a.region.Kind().String()
	}
	if a.data == nil {
		return s
	}
	s.BlocksUsed = len(a.live)
	s.BlocksFree = a.index.Len()
	s.IndexLen = a.index.Len()
	s.IndexPeak = a.index.Peak()
	if e, ok := a.index.Max(); ok {
		s.LargestFree = int(e.Size)
	}
	return s
}
