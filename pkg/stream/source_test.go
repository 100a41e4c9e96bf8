package stream_test

import (
	"context"
	"errors"
	"io"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/streampipeco/streampipe/pkg/stream"
)

// chunkSource yields a fixed set of chunks and records cancellation.
type chunkSource struct {
	chunks [][]byte

	mu      sync.Mutex
	next    int
	cancels []error
}

func (s *chunkSource) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, context.Cause(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.chunks) {
		return nil, io.EOF
	}
	chunk := s.chunks[s.next]
	s.next++
	return chunk, nil
}

func (s *chunkSource) Cancel(reason error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels = append(s.cancels, reason)
}

func (s *chunkSource) Cancels() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.cancels...)
}

func (s *chunkSource) Pulled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

var _ = Describe("Empty", func() {
	It("produces zero bytes and is already closed", func() {
		s := stream.Empty()

		out, err := io.ReadAll(s)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(BeEmpty())
		Expect(s.Close()).To(Succeed())
	})
})

var _ = Describe("FromSource", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = GinkgoT().Context()
	})

	It("streams all chunks in order", func() {
		src := &chunkSource{chunks: [][]byte{[]byte("one "), []byte("two "), []byte("three")}}

		out, err := io.ReadAll(stream.FromSource(ctx, src))

		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(Equal("one two three"))
	})

	It("advances the source by at most one chunk per pull", func() {
		src := &chunkSource{chunks: [][]byte{[]byte("aa"), []byte("bb")}}
		s := stream.FromSource(ctx, src)

		buf := make([]byte, 1)
		_, err := s.Read(buf)
		Expect(err).NotTo(HaveOccurred())

		// Half of the first chunk is still buffered; the source must not
		// have been pulled again.
		Expect(src.Pulled()).To(Equal(1))
	})

	It("does not invoke the cancel hook on normal completion", func() {
		src := &chunkSource{chunks: [][]byte{[]byte("all")}}
		s := stream.FromSource(ctx, src)

		_, err := io.ReadAll(s)
		Expect(err).NotTo(HaveOccurred())

		Expect(s.Close()).To(Succeed())
		Expect(src.Cancels()).To(BeEmpty())
	})

	It("invokes the cancel hook exactly once with the supplied reason", func() {
		reason := errors.New("consumer lost interest")
		src := &chunkSource{chunks: [][]byte{[]byte("one"), []byte("two"), []byte("three")}}
		s := stream.FromSource(ctx, src)

		buf := make([]byte, 3)
		_, err := s.Read(buf)
		Expect(err).NotTo(HaveOccurred())

		Expect(s.CloseWithReason(reason)).To(Succeed())
		Expect(s.Close()).To(Succeed()) // idempotent

		Expect(src.Cancels()).To(Equal([]error{reason}))
	})

	It("fails subsequent reads after close", func() {
		src := &chunkSource{chunks: [][]byte{[]byte("one"), []byte("two")}}
		s := stream.FromSource(ctx, src)

		buf := make([]byte, 3)
		_, err := s.Read(buf)
		Expect(err).NotTo(HaveOccurred())

		Expect(s.Close()).To(Succeed())

		_, err = s.Read(buf)
		Expect(err).To(MatchError(stream.ErrCanceled))
	})

	It("propagates context cancellation into the source", func() {
		cancelCtx, cancel := context.WithCancelCause(context.Background())
		reason := errors.New("deadline passed")
		src := &chunkSource{chunks: [][]byte{[]byte("one")}}
		s := stream.FromSource(cancelCtx, src)

		cancel(reason)

		Eventually(src.Cancels).Should(Equal([]error{reason}))

		buf := make([]byte, 3)
		_, err := s.Read(buf)
		Expect(err).To(MatchError(reason))
	})

	It("surfaces source errors without invoking the cancel hook", func() {
		boom := errors.New("upstream exploded")
		src := &errorSource{err: boom}
		s := stream.FromSource(ctx, src)

		buf := make([]byte, 3)
		_, err := s.Read(buf)
		Expect(err).To(MatchError(boom))
		Expect(src.Cancels()).To(BeEmpty())
	})
})

// errorSource always fails and records cancellation.
type errorSource struct {
	err error

	mu      sync.Mutex
	cancels []error
}

func (s *errorSource) Next(context.Context) ([]byte, error) {
	return nil, s.err
}

func (s *errorSource) Cancel(reason error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels = append(s.cancels, reason)
}

func (s *errorSource) Cancels() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.cancels...)
}
