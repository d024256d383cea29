package arena

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestArena creates an arena and registers Close as cleanup.
func newTestArena(t testing.TB, capacity int, opts *Options) *Arena {
	t.Helper()
	a, err := New(capacity, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// requireCheck runs the full invariant check.
func requireCheck(t testing.TB, a *Arena) {
	t.Helper()
	require.NoError(t, a.Check())
}

// blocks returns the physical block list.
func blocks(t testing.TB, a *Arena) []Block {
	t.Helper()
	var out []Block
	require.NoError(t, a.Walk(func(b Block) bool {
		out = append(out, b)
		return true
	}))
	return out
}

// requireDisjoint checks that the given live payloads do not overlap each
// other or any free block's payload.
func requireDisjoint(t testing.TB, a *Arena, live map[Ref]int) {
	t.Helper()
	type span struct{ start, end int }
	var spans []span
	for ref := range live {
		n, err := a.UsableSize(ref)
		require.NoError(t, err)
		spans = append(spans, span{int(ref), int(ref) + n})
	}
	for _, b := range blocks(t, a) {
		if b.Free {
			spans = append(spans, span{int(b.Ref), int(b.Ref) + b.Size})
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for i := 1; i < len(spans); i++ {
		require.LessOrEqual(t, spans[i-1].end, spans[i].start-HeaderSize,
			"payload [%d,%d) overlaps header or payload at %d", spans[i-1].start, spans[i-1].end, spans[i].start)
	}
}

func fill(p []byte, v byte) {
	for i := range p {
		p[i] = v
	}
}

func requireFilled(t testing.TB, p []byte, v byte, msg string) {
	t.Helper()
	for i, b := range p {
		if b != v {
			require.Failf(t, "payload corrupted", "%s: byte %d = 0x%X, want 0x%X", msg, i, b, v)
		}
	}
}
