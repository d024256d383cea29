package arena_test

import (
	"fmt"

	"github.com/joshuapare/heapkit/arena"
)

func Example() {
	a, err := arena.New(1024, nil)
	if err != nil {
		panic(err)
	}
	defer a.Close()

	ref, p, _ := a.Alloc(128)
	copy(p, "hello")

	ref, p, _ = a.Realloc(ref, 256)
	fmt.Println(string(p[:5]), len(p))

	_ = a.Free(ref)
	s := a.Stats()
	fmt.Println(s.BlocksUsed, s.BlocksFree)
	// Output:
	// hello 256
	// 0 3
}

func ExampleOptions() {
	a := arena.MustNew(1024, &arena.Options{Coalesce: arena.CoalesceImmediate})
	defer a.Close()

	x, _, _ := a.Alloc(100)
	y, _, _ := a.Alloc(100)
	_ = a.Free(x)
	_ = a.Free(y)

	fmt.Println(a.Stats().BlocksFree, a.Stats().LargestFree)
	// Output: 1 1012
}
