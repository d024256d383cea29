//go:build unix

package region

import (
	"errors"

	"golang.org/x/sys/unix"
)

// reserveMapped creates an anonymous private read-write mapping. The kernel
// hands it out zero-filled.
func reserveMapped(size int) ([]byte, Kind, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, Mmap, err
	}
	return data, Mmap, nil
}

func releaseMapped(data []byte) error {
	err := unix.Munmap(data)
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}
