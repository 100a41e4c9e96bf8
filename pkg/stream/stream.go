// Package stream converts SSE responses from LLM providers into demand-driven
// token byte streams with lifecycle callbacks.
//
// The pipeline is:
//
//	┌────────────────────┐
//	│ http.Response.Body │
//	└────────────────────┘
//	│
//	▼
//	┌────────────────────┐
//	│     sse.Reader     │  one decoded data string per event
//	└────────────────────┘
//	│
//	▼
//	┌────────────────────┐
//	│     Extractor      │  provider payload → plain-text token
//	└────────────────────┘
//	│
//	▼
//	┌────────────────────┐
//	│  lifecycle stage   │  OnStart / OnToken / OnCompletion
//	└────────────────────┘
//	│
//	▼
//	┌────────────────────┐
//	│   io.ReadCloser    │  UTF-8 token bytes, pull-based
//	└────────────────────┘
//
// Every stage is demand-driven: the pipeline writes into an io.Pipe, so the
// next upstream read only happens once the consumer has drained the previous
// token. A slow consumer throttles the network read, and closing the returned
// stream (or cancelling the context) propagates all the way up to the
// transport.
package stream

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/streampipeco/streampipe/pkg/logger"
	"github.com/streampipeco/streampipe/pkg/sse"
)

// maxFailureBody bounds the single diagnostic read of a failed response body.
const maxFailureBody = 64 * 1024

// New converts resp into a token byte stream.
//
// On a non-2xx response the returned stream produces no data: its first read
// fails with a diagnostic error built from at most one read of the response
// body ("Response error: ..."), or ErrNoResponseBody when the response has no
// body. No retries are attempted.
//
// On a 2xx response the body is framed into SSE events, each event's data is
// passed through the configured Extractor (absent extractor: forwarded
// verbatim), and the resulting tokens are re-encoded onto the returned
// stream. A nil body behaves as an already-closed body, so OnCompletion still
// fires with an empty completion.
//
// New takes ownership of resp.Body and closes it when the stream ends, is
// closed, or ctx is cancelled.
func New(ctx context.Context, resp *http.Response, opts ...Option) io.ReadCloser {
	o := newOptions(opts)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		err := failureError(resp)
		o.logger.Debug("upstream response failed", "status", resp.StatusCode, "error", err)
		return Error(err)
	}

	body := resp.Body
	if body == nil {
		body = Empty()
	}

	pr, pw := io.Pipe()

	p := &pipeline{
		extractor: o.extractor,
		callbacks: o.callbacks,
		logger:    o.logger,
	}

	// Cancelling ctx fails the consumer side first, then closes the body:
	// the pipeline goroutine is unblocked whether it sits in a pending pipe
	// write or in an idle transport read.
	stop := context.AfterFunc(ctx, func() {
		pr.CloseWithError(context.Cause(ctx))
		body.Close()
	})

	go func() {
		defer stop()
		p.run(ctx, body, pw)
	}()

	return &consumerStream{pr: pr, body: body}
}

// consumerStream is the consumer-facing handle over the pipe. Close tears
// down both ends: the pipe reader, failing a pipeline blocked in a write,
// and the transport body, aborting a pipeline blocked in a read waiting for
// upstream bytes that may never come.
type consumerStream struct {
	pr   *io.PipeReader
	body io.ReadCloser
}

func (s *consumerStream) Read(p []byte) (int, error) {
	return s.pr.Read(p)
}

func (s *consumerStream) Close() error {
	err := s.pr.Close()
	s.body.Close()
	return err
}

// failureError derives a stream error from a failed response, reading the
// body at most once. Empty or undecodable bodies surface as an empty or
// sanitized message rather than failing the orchestration.
func failureError(resp *http.Response) error {
	if resp.Body == nil {
		return ErrNoResponseBody
	}
	defer resp.Body.Close()

	buf := make([]byte, maxFailureBody)
	n, _ := resp.Body.Read(buf)
	text := strings.ToValidUTF8(string(buf[:n]), "�")

	return fmt.Errorf("Response error: %s", text)
}

// pipeline runs the framing, extraction and lifecycle stages for one
// invocation. All state is owned by the single goroutine in run, which makes
// the callback sequencing an explicit sequential task queue: no token N+1 is
// touched until token N's write and callbacks have settled.
type pipeline struct {
	extractor Extractor
	callbacks Callbacks
	logger    *slog.Logger
}

func (p *pipeline) run(ctx context.Context, body io.ReadCloser, pw *io.PipeWriter) {
	defer body.Close()

	if err := p.transform(ctx, body, pw); err != nil {
		p.logger.Debug("stream aborted", "error", err)
		pw.CloseWithError(err)
		return
	}

	pw.Close()
}

func (p *pipeline) transform(ctx context.Context, body io.Reader, pw *io.PipeWriter) error {
	if cb := p.callbacks.OnStart; cb != nil {
		if err := cb(ctx); err != nil {
			return fmt.Errorf("onStart callback: %w", err)
		}
	}

	var completion strings.Builder
	tokens := 0

	r := sse.NewReader(body)
	for {
		ev, err := r.Next()
		if err != nil {
			return err
		}
		if ev == nil {
			break
		}
		if ev.Terminal() {
			// The terminal event carries no token; the reader has already
			// stopped framing.
			break
		}

		token, ok := p.extract(ev)
		if !ok || token == "" {
			continue
		}

		// Blocks until the consumer drains the pipe: this is the
		// backpressure boundary, and it also surfaces consumer-side
		// cancellation as a write error.
		if _, err := io.WriteString(pw, token); err != nil {
			return err
		}
		tokens++

		if cb := p.callbacks.OnToken; cb != nil {
			if err := cb(ctx, token); err != nil {
				return fmt.Errorf("onToken callback: %w", err)
			}
		}
		if p.callbacks.OnCompletion != nil {
			completion.WriteString(token)
		}
	}

	if cb := p.callbacks.OnCompletion; cb != nil {
		if err := cb(ctx, completion.String()); err != nil {
			return fmt.Errorf("onCompletion callback: %w", err)
		}
	}

	p.logger.Debug("stream complete", "tokens", tokens)
	return nil
}

func (p *pipeline) extract(ev *sse.Event) (string, bool) {
	if p.extractor == nil {
		return ev.Data, ev.Data != ""
	}
	return p.extractor.ExtractToken(ev.Data)
}

type options struct {
	extractor Extractor
	callbacks Callbacks
	logger    *slog.Logger
}

func newOptions(opts []Option) *options {
	o := &options{logger: logger.Nop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option configures a stream created with New.
type Option func(*options)

// WithExtractor sets the token extraction hook. Extractors may be stateful
// (for example start-of-stream trimming) and must be fresh per invocation.
func WithExtractor(e Extractor) Option {
	return func(o *options) {
		o.extractor = e
	}
}

// WithCallbacks sets the lifecycle callbacks.
func WithCallbacks(cb Callbacks) Option {
	return func(o *options) {
		o.callbacks = cb
	}
}

// WithLogger sets the logger for pipeline debug events. Defaults to a no-op
// logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
