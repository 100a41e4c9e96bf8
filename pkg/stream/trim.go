package stream

import (
	"strings"
	"unicode"
)

// StartTrimmer strips leading whitespace from the start of a text stream.
//
// Trimming stays armed until the first call that produces a non-empty
// residue: a provider whose first chunk is all whitespace gets that chunk
// reduced to "" and the next chunk trimmed too. Once any text survives,
// every subsequent chunk passes through unmodified.
//
// The zero value is ready to use. A StartTrimmer belongs to exactly one
// stream invocation.
type StartTrimmer struct {
	started bool
}

// Trim returns text with leading whitespace removed if the stream has not
// produced text yet, and text unchanged otherwise.
func (t *StartTrimmer) Trim(text string) string {
	if t.started {
		return text
	}

	out := strings.TrimLeftFunc(text, unicode.IsSpace)
	if out != "" {
		t.started = true
	}
	return out
}
