package stream

import "context"

// Callbacks are optional lifecycle handlers fired by the pipeline. Any
// handler may be nil. Invocation order is strictly
//
//	OnStart → OnToken (per forwarded token, in arrival order) → OnCompletion
//
// and each handler runs to completion before the pipeline proceeds, so a
// handler doing slow work throttles the stream rather than racing it. A
// handler returning an error aborts the pipeline and surfaces that error to
// the stream's consumer; no further tokens are processed.
type Callbacks struct {
	// OnStart fires exactly once, before the first token byte is enqueued.
	OnStart func(ctx context.Context) error

	// OnToken fires once per forwarded token, after the token's bytes have
	// been enqueued downstream.
	OnToken func(ctx context.Context, token string) error

	// OnCompletion fires exactly once after the stream ends, receiving the
	// concatenation of all forwarded tokens in arrival order. The aggregate
	// is only accumulated when OnCompletion is set.
	OnCompletion func(ctx context.Context, completion string) error
}

// Extractor extracts a plain-text token from a single SSE event's data
// payload. The second return value reports whether a token was found; empty
// tokens are dropped by the pipeline either way.
//
// Each provider's streaming payload shape gets its own implementation (see
// the extract package). Implementations may carry per-stream state and must
// not be reused across pipeline invocations.
type Extractor interface {
	ExtractToken(data string) (string, bool)
}

// ExtractorFunc adapts a plain function to the Extractor interface.
type ExtractorFunc func(data string) (string, bool)

func (f ExtractorFunc) ExtractToken(data string) (string, bool) {
	return f(data)
}
