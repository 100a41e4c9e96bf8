// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// reader for consuming streaming responses from LLM providers. It parses
// events from an upstream byte stream and can optionally tee the raw bytes
// verbatim to a downstream writer.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// Providers signal end-of-stream with one of two conventions. Both are
// honored as generic termination triggers; there is no per-provider
// namespacing, so a provider emitting "done" as a literal event type for
// non-control content would be mis-terminated.
const (
	// DoneData is the sentinel data payload used by OpenAI-style streams.
	DoneData = "[DONE]"

	// DoneType is the event type used by providers that signal termination
	// with a dedicated event instead of a sentinel payload.
	DoneType = "done"
)

// Event represents a single parsed SSE event, delimited by a blank line
// in the upstream byte stream.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means the default "message" type per the SSE spec.
	Type string

	// Data is the concatenated contents of all "data:" lines for this event,
	// joined with "\n" (per the SSE spec, multiple data fields are joined
	// with a single newline).
	Data string

	// ID is the last event ID from the "id:" field, if present.
	ID string

	// Retry is the reconnection interval in milliseconds from the "retry:"
	// field, or 0 when absent. Parsed for completeness; this package never
	// reconnects.
	Retry int
}

// Terminal reports whether the event marks end-of-stream.
func (e *Event) Terminal() bool {
	return e.Data == DoneData || e.Type == DoneType
}
