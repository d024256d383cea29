package arena

import (
	"testing"
)

func BenchmarkAllocFree(b *testing.B) {
	for _, c := range []Coalesce{CoalesceNone, CoalesceImmediate} {
		b.Run(c.String(), func(b *testing.B) {
			a := newTestArena(b, 1<<20, &Options{Coalesce: c})
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				ref, _, err := a.Alloc(64)
				if err != nil {
					b.Fatal(err)
				}
				if err := a.Free(ref); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkAllocFragmented(b *testing.B) {
	a := newTestArena(b, 4<<20, nil)
	var refs []Ref
	for i := 0; i < 4096; i++ {
		ref, _, err := a.Alloc(16 + (i%32)*8)
		if err != nil {
			b.Fatal(err)
		}
		refs = append(refs, ref)
	}
	for i := 0; i < len(refs); i += 2 {
		_ = a.Free(refs[i])
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ref, _, err := a.Alloc(100)
		if err != nil {
			b.Fatal(err)
		}
		if err := a.Free(ref); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkAllocManyFragments keeps more than 10k undersized free blocks in
// the index; selecting the fitting block must not walk past them.
func BenchmarkAllocManyFragments(b *testing.B) {
	a := newTestArena(b, 1<<20, nil)
	refs := make([]Ref, 0, 24000)
	for i := 0; i < 24000; i++ {
		ref, _, err := a.Alloc(4)
		if err != nil {
			b.Fatal(err)
		}
		refs = append(refs, ref)
	}
	for i := 0; i < len(refs); i += 2 {
		if err := a.Free(refs[i]); err != nil {
			b.Fatal(err)
		}
	}
	if n := a.Stats().BlocksFree; n <= 10000 {
		b.Fatalf("only %d free blocks", n)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ref, _, err := a.Alloc(64)
		if err != nil {
			b.Fatal(err)
		}
		if err := a.Free(ref); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRealloc(b *testing.B) {
	a := newTestArena(b, 1<<20, &Options{Coalesce: CoalesceImmediate})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ref, _, err := a.Alloc(32)
		if err != nil {
			b.Fatal(err)
		}
		if ref, _, err = a.Realloc(ref, 512); err != nil {
			b.Fatal(err)
		}
		if err := a.Free(ref); err != nil {
			b.Fatal(err)
		}
	}
}
