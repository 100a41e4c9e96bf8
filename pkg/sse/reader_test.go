package sse

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Reader", func() {
	Describe("Next", func() {
		Context("with standard SSE events", func() {
			It("parses a single event", func() {
				r := NewReader(strings.NewReader("data: hello world\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(Equal("hello world"))
				Expect(ev.Type).To(BeEmpty())
				Expect(ev.ID).To(BeEmpty())

				ev, err = r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev).To(BeNil())
			})

			It("parses multiple events", func() {
				r := NewReader(strings.NewReader("data: first\n\ndata: second\n\n"))

				ev1, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev1.Data).To(Equal("first"))

				ev2, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev2.Data).To(Equal("second"))

				ev3, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev3).To(BeNil())
			})

			It("parses event type", func() {
				r := NewReader(strings.NewReader("event: content_block_delta\ndata: {\"type\":\"delta\"}\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Type).To(Equal("content_block_delta"))
				Expect(ev.Data).To(Equal("{\"type\":\"delta\"}"))
			})

			It("parses event ID", func() {
				r := NewReader(strings.NewReader("id: 42\ndata: hello\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.ID).To(Equal("42"))
				Expect(ev.Data).To(Equal("hello"))
			})

			It("parses retry intervals", func() {
				r := NewReader(strings.NewReader("retry: 3000\ndata: hello\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Retry).To(Equal(3000))
				Expect(ev.Data).To(Equal("hello"))
			})

			It("ignores non-numeric retry values", func() {
				r := NewReader(strings.NewReader("retry: soon\ndata: hello\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Retry).To(BeZero())
			})

			It("joins multiple data lines with newline", func() {
				r := NewReader(strings.NewReader("data: line one\ndata: line two\ndata: line three\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(Equal("line one\nline two\nline three"))
			})

			It("keeps a leading empty data line in the join", func() {
				r := NewReader(strings.NewReader("data:\ndata: x\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(Equal("\nx"))
			})
		})

		Context("with termination events", func() {
			It("returns the [DONE] sentinel event and then stops framing", func() {
				input := "data: first\n\ndata: [DONE]\n\ndata: after\n\n"
				r := NewReader(strings.NewReader(input))

				ev1, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev1.Data).To(Equal("first"))
				Expect(ev1.Terminal()).To(BeFalse())

				ev2, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev2.Terminal()).To(BeTrue())

				// Buffered input after the sentinel must never be framed.
				ev3, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev3).To(BeNil())
			})

			It("treats a done-typed event as terminal", func() {
				input := "event: done\ndata: {}\n\ndata: after\n\n"
				r := NewReader(strings.NewReader(input))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Terminal()).To(BeTrue())

				ev, err = r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev).To(BeNil())
			})
		})

		Context("with OpenAI-style SSE", func() {
			It("parses OpenAI streaming chunks", func() {
				input := "data: {\"id\":\"chatcmpl-1\",\"choices\":[{\"delta\":{\"content\":\"Hello\"}}]}\n\n" +
					"data: {\"id\":\"chatcmpl-1\",\"choices\":[{\"delta\":{\"content\":\" world\"}}]}\n\n" +
					"data: [DONE]\n\n"
				r := NewReader(strings.NewReader(input))

				ev1, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev1.Data).To(Equal("{\"id\":\"chatcmpl-1\",\"choices\":[{\"delta\":{\"content\":\"Hello\"}}]}"))

				ev2, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev2.Data).To(Equal("{\"id\":\"chatcmpl-1\",\"choices\":[{\"delta\":{\"content\":\" world\"}}]}"))

				ev3, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev3.Data).To(Equal(DoneData))
				Expect(ev3.Terminal()).To(BeTrue())
			})
		})

		Context("with Anthropic-style SSE", func() {
			It("parses Anthropic streaming events with event types", func() {
				input := "event: message_start\ndata: {\"type\":\"message_start\",\"message\":{\"id\":\"msg_1\"}}\n\n" +
					"event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"text\":\"Hello\"}}\n\n" +
					"event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n"
				r := NewReader(strings.NewReader(input))

				ev1, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev1.Type).To(Equal("message_start"))

				ev2, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev2.Type).To(Equal("content_block_delta"))
				Expect(ev2.Data).To(ContainSubstring("Hello"))

				ev3, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev3.Type).To(Equal("message_stop"))
				Expect(ev3.Terminal()).To(BeFalse())

				ev4, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev4).To(BeNil())
			})
		})

		Context("with SSE comments", func() {
			It("ignores comment lines in parsed events", func() {
				r := NewReader(strings.NewReader(": this is a comment\ndata: hello\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(Equal("hello"))
			})
		})

		Context("with data field variations", func() {
			It("handles data field with no space after colon", func() {
				r := NewReader(strings.NewReader("data:no-space\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(Equal("no-space"))
			})

			It("handles empty data field", func() {
				r := NewReader(strings.NewReader("data:\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(BeEmpty())
			})

			It("handles data field with only a space (empty value per spec)", func() {
				r := NewReader(strings.NewReader("data: \n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(BeEmpty())
			})
		})

		Context("with malformed byte sequences", func() {
			It("substitutes the replacement character instead of failing", func() {
				r := NewReader(bytes.NewReader([]byte("data: he\xffllo\n\n")))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(Equal("he�llo"))
			})

			It("survives multi-byte characters split across transport chunks", func() {
				// iotest-style one-byte reads force the UTF-8 sequence of "é"
				// to arrive across reads; line buffering must reassemble it.
				r := NewReader(oneByteReader{strings.NewReader("data: café\n\n")})

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(Equal("café"))
			})
		})

		Context("edge cases", func() {
			It("returns nil on empty input", func() {
				r := NewReader(strings.NewReader(""))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev).To(BeNil())
			})

			It("returns nil on input with only blank lines", func() {
				r := NewReader(strings.NewReader("\n\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev).To(BeNil())
			})

			It("yields event when stream ends without trailing blank line", func() {
				r := NewReader(strings.NewReader("data: unterminated"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(Equal("unterminated"))

				ev, err = r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev).To(BeNil())
			})

			It("skips leading blank lines before first event", func() {
				r := NewReader(strings.NewReader("\n\ndata: hello\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(Equal("hello"))
			})

			It("ignores unknown fields", func() {
				r := NewReader(strings.NewReader("foo: bar\ndata: hello\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(Equal("hello"))
			})

			It("handles field with no colon", func() {
				// Per spec: if a line has no colon, the entire line is the field name
				// with an empty value.
				r := NewReader(strings.NewReader("data\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(BeEmpty())
			})
		})
	})
})

var _ = Describe("TeeReader", func() {
	var dst *bytes.Buffer

	BeforeEach(func() {
		dst = &bytes.Buffer{}
	})

	It("forwards all bytes including \\n\\n delimiters to dst", func() {
		input := "data: first\n\ndata: second\n\n"
		r := NewTeeReader(strings.NewReader(input), dst)

		_, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		_, err = r.Next()
		Expect(err).NotTo(HaveOccurred())
		_, err = r.Next()
		Expect(err).NotTo(HaveOccurred())

		Expect(dst.String()).To(Equal(input))
	})

	It("preserves exact Anthropic SSE framing in dst", func() {
		input := "event: content_block_delta\ndata: {\"delta\":{\"text\":\"Hi\"}}\n\nevent: message_stop\ndata: {\"type\":\"message_stop\"}\n\n"
		r := NewTeeReader(strings.NewReader(input), dst)

		_, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		_, err = r.Next()
		Expect(err).NotTo(HaveOccurred())

		Expect(dst.String()).To(Equal(input))
	})

	It("preserves comment lines in dst output", func() {
		input := ": keep-alive\ndata: hello\n\n"
		r := NewTeeReader(strings.NewReader(input), dst)

		_, err := r.Next()
		Expect(err).NotTo(HaveOccurred())

		Expect(dst.String()).To(ContainSubstring(": keep-alive\n"))
		Expect(dst.String()).To(ContainSubstring("data: hello\n"))
	})

	It("stops forwarding after a terminal event", func() {
		input := "data: [DONE]\n\ndata: after\n\n"
		r := NewTeeReader(strings.NewReader(input), dst)

		ev, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Terminal()).To(BeTrue())

		ev, err = r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(ev).To(BeNil())

		Expect(dst.String()).To(Equal("data: [DONE]\n\n"))
		Expect(dst.String()).NotTo(ContainSubstring("after"))
	})
})

// oneByteReader delivers one byte per Read to simulate arbitrarily fragmented
// transport chunks.
type oneByteReader struct {
	r *strings.Reader
}

func (o oneByteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return o.r.Read(p[:1])
}
