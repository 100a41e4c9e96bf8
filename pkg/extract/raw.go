package extract

import "github.com/streampipeco/streampipe/pkg/stream"

// Raw returns an extractor that passes event data through verbatim, with no
// decoding and no start-of-stream trimming. Useful for upstreams that
// already emit plain text.
func Raw() stream.Extractor {
	return stream.ExtractorFunc(func(data string) (string, bool) {
		return data, true
	})
}
