package stream_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/streampipeco/streampipe/pkg/stream"
)

var _ = Describe("StartTrimmer", func() {
	It("strips leading whitespace from the first chunk only", func() {
		var t stream.StartTrimmer
		Expect(t.Trim("   a")).To(Equal("a"))
		Expect(t.Trim("   b")).To(Equal("   b"))
	})

	It("keeps trimming across an all-whitespace first chunk", func() {
		var t stream.StartTrimmer
		Expect(t.Trim("   ")).To(Equal(""))
		Expect(t.Trim("  c")).To(Equal("c"))
	})

	It("passes unpadded text through untouched", func() {
		var t stream.StartTrimmer
		Expect(t.Trim("hello")).To(Equal("hello"))
		Expect(t.Trim(" padded")).To(Equal(" padded"))
	})

	It("treats tabs and newlines as leading whitespace", func() {
		var t stream.StartTrimmer
		Expect(t.Trim("\n\t x")).To(Equal("x"))
	})

	It("treats unicode spaces as leading whitespace", func() {
		var t stream.StartTrimmer
		Expect(t.Trim("   x")).To(Equal("x"))
	})
})
