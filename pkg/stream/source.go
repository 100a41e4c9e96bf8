package stream

import (
	"context"
	"errors"
	"io"
	"sync"
)

// Empty returns a stream that is already closed on construction; it produces
// zero bytes. Used to stand in for a missing response body so downstream
// composition never special-cases nil.
func Empty() io.ReadCloser {
	return io.NopCloser(&emptyReader{})
}

type emptyReader struct{}

func (*emptyReader) Read([]byte) (int, error) { return 0, io.EOF }

// Source is an asynchronous pull-based sequence of byte chunks. Next blocks
// until the next chunk is available and returns io.EOF when the sequence is
// exhausted. Implementations may also implement SourceCanceler to be told
// when the consumer stops early.
type Source interface {
	Next(ctx context.Context) ([]byte, error)
}

// SourceCanceler is optionally implemented by Sources that hold upstream
// resources. Cancel is invoked at most once, with the reason the consumer
// stopped, and only when the sequence did not run to completion.
type SourceCanceler interface {
	Cancel(reason error)
}

// SourceStream adapts a Source into a demand-driven io.ReadCloser: each read
// advances the source by at most one chunk, so a slow consumer throttles the
// producer. Closing the stream, or cancelling the construction context,
// propagates into the source's Cancel hook exactly once.
//
// SourceStream expects a single reader goroutine, matching io.Reader
// convention; Close may be called from any goroutine.
type SourceStream struct {
	ctx  context.Context
	src  Source
	stop func() bool

	// buf and done are owned by the reader goroutine.
	buf  []byte
	done bool

	mu        sync.Mutex
	err       error
	completed bool

	cancelOnce sync.Once
}

// FromSource adapts src into a demand-driven byte stream. The returned
// stream's pulls are driven by ctx: cancelling it fails pending and future
// reads with the context's cause and cancels the source.
func FromSource(ctx context.Context, src Source) *SourceStream {
	s := &SourceStream{ctx: ctx, src: src}
	s.stop = context.AfterFunc(ctx, func() {
		s.cancel(context.Cause(ctx))
	})
	return s
}

func (s *SourceStream) Read(p []byte) (int, error) {
	for len(s.buf) == 0 {
		if err := s.failure(); err != nil {
			return 0, err
		}
		if s.done {
			return 0, io.EOF
		}

		chunk, err := s.src.Next(s.ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.done = true
				s.setCompleted()
				s.stop()
			} else {
				s.fail(err)
			}
		}
		s.buf = chunk
	}

	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

// Close cancels the stream with ErrCanceled. Subsequent reads fail.
func (s *SourceStream) Close() error {
	return s.CloseWithReason(ErrCanceled)
}

// CloseWithReason cancels the stream, propagating reason to the source's
// Cancel hook if the sequence has not already completed.
func (s *SourceStream) CloseWithReason(reason error) error {
	s.cancel(reason)
	s.stop()
	return nil
}

func (s *SourceStream) cancel(reason error) {
	s.cancelOnce.Do(func() {
		s.mu.Lock()
		completed := s.completed
		if !completed && s.err == nil {
			s.err = reason
		}
		s.mu.Unlock()

		if completed {
			// The source already reported completion; there is nothing to
			// release early.
			return
		}
		if c, ok := s.src.(SourceCanceler); ok {
			c.Cancel(reason)
		}
	})
}

func (s *SourceStream) failure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *SourceStream) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *SourceStream) setCompleted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = true
}
