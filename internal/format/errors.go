package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a header.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrBadHeader indicates a header whose fields cannot describe a block in the buffer.
	ErrBadHeader = errors.New("format: malformed block header")
)
