package sse

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Reader parses SSE events from a source io.Reader.
//
// Reading is incremental and line-based: multi-byte UTF-8 sequences that span
// transport chunk boundaries are reassembled before decoding, and invalid
// byte sequences are replaced with U+FFFD rather than surfaced as errors.
//
// Once a terminal event is observed (see Event.Terminal), the Reader stops
// framing: the terminal event is returned to the caller, and every subsequent
// Next call reports end-of-stream without consuming further source bytes.
type Reader struct {
	scanner *bufio.Scanner
	dest    io.Writer

	// current accumulates fields for the event being built in the current scan.
	current  *Event
	hasField bool
	dataSeen bool
	done     bool
}

// NewReader returns a Reader that parses SSE events from src.
func NewReader(src io.Reader) *Reader {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	return &Reader{
		scanner: scanner,
		current: &Event{},
	}
}

// NewTeeReader returns a Reader that additionally writes all raw source bytes
// through to dest, verbatim. The dest writer typically backs an io.Pipe
// connected to a downstream HTTP response, so clients receive the exact SSE
// stream while the caller inspects parsed events.
//
// The tee stops with the Reader: bytes buffered after a terminal event are
// neither parsed nor forwarded.
func NewTeeReader(src io.Reader, dest io.Writer) *Reader {
	r := NewReader(src)
	r.dest = dest
	return r
}

// Next returns the next parsed SSE event. It blocks until a complete event is
// available (terminated by a blank line in the stream, or by the stream
// ending with an unterminated event). Next returns nil, nil when the source
// is exhausted or a terminal event was already returned.
func (r *Reader) Next() (*Event, error) {
	if r.done {
		return nil, nil
	}

	for r.scanner.Scan() {
		line := r.scanner.Bytes()

		if r.dest != nil {
			if _, err := r.dest.Write(line); err != nil {
				return nil, err
			}
			// bufio.Scanner strips the newline from Scan() so we reinsert it.
			if _, err := r.dest.Write([]byte{'\n'}); err != nil {
				return nil, err
			}
		}

		raw := strings.ToValidUTF8(string(line), "�")

		// A blank line signals the end of the current event.
		if raw == "" {
			if r.hasField {
				ev := r.current
				r.reset()
				if ev.Terminal() {
					r.done = true
				}
				return ev, nil
			}

			// Blank line with no accumulated fields — skip (e.g. leading
			// blank lines or keep-alive newlines).
			continue
		}

		// Lines starting with ':' are comments. Skip them in Event parsing.
		if strings.HasPrefix(raw, ":") {
			continue
		}

		r.parseLine(raw)
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	// Source exhausted with no scanner error. If there is an in-progress
	// event (stream ended without a trailing blank line), yield it.
	r.done = true
	if r.hasField {
		ev := r.current
		r.reset()
		return ev, nil
	}

	return nil, nil
}

// parseLine processes a single non-empty, non-comment SSE line and
// accumulates the field into the current event.
//
// Per the SSE spec, a line has the form "field:value" where the first
// space after the colon is optional and stripped if present.
func (r *Reader) parseLine(line string) {
	var field, value string

	if before, after, ok := strings.Cut(line, ":"); ok {
		field = before
		// Strip a single leading space after the colon, per spec.
		value = strings.TrimPrefix(after, " ")
	} else {
		// Line with no colon: the entire line is the field name with
		// an empty value.
		field = line
	}

	switch field {
	case "data":
		// Multiple data fields are joined with "\n". An empty data line
		// still counts as a field, so "data:\ndata: x" yields "\nx".
		if r.dataSeen {
			r.current.Data += "\n"
		}
		r.current.Data += value
		r.dataSeen = true
		r.hasField = true
	case "event":
		r.current.Type = value
		r.hasField = true
	case "id":
		r.current.ID = value
		r.hasField = true
	case "retry":
		// Per spec the value must be all ASCII digits; anything else is ignored.
		if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
			r.current.Retry = ms
			r.hasField = true
		}
	default:
		// Unknown fields are ignored per the SSE spec.
	}
}

// reset clears the accumulated event state for the next event.
func (r *Reader) reset() {
	r.current = &Event{}
	r.hasField = false
	r.dataSeen = false
}
