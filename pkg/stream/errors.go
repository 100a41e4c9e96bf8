package stream

import (
	"errors"
	"io"
)

// Error strings are part of the wire contract with downstream route handlers
// and intentionally keep their human-readable capitalization.
var (
	// ErrNoResponseBody is surfaced when a failed HTTP response carries no
	// body to derive a diagnostic message from.
	ErrNoResponseBody = errors.New("No response body")

	// ErrCanceled is the default early-termination reason when a stream is
	// closed without an explicit cause.
	ErrCanceled = errors.New("stream canceled")
)

// Error returns a stream that is already failed: it produces no data and
// every read reports err.
func Error(err error) io.ReadCloser {
	pr, pw := io.Pipe()
	pw.CloseWithError(err)
	return pr
}
