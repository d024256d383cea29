// Package buf contains little-endian field access for in-band arena metadata.
package buf

import "encoding/binary"

// U32LE reads a little-endian uint32 at off. Returns 0 when the field does not fit.
func U32LE(b []byte, off int) uint32 {
	if !Has(b, off, 4) {
		return 0
	}
	return binary.LittleEndian.Uint32(b[off:])
}

// PutU32LE writes v little-endian at off and reports whether the field fit.
func PutU32LE(b []byte, off int, v uint32) bool {
	if !Has(b, off, 4) {
		return false
	}
	binary.LittleEndian.PutUint32(b[off:], v)
	return true
}

// Zero clears b.
func Zero(b []byte) {
	clear(b)
}
