//go:build !unix

package region

// reserveMapped falls back to the Go heap when mmap is not available.
func reserveMapped(size int) ([]byte, Kind, error) {
	data, err := reserveHeap(size)
	return data, Heap, err
}

func releaseMapped([]byte) error {
	return nil
}
