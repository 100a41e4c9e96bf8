package extract

import (
	"encoding/json"

	"github.com/streampipeco/streampipe/pkg/stream"
)

// anthropicChunk is the subset of an Anthropic messages streaming event we
// care about. Text arrives on content_block_delta events as delta.text;
// every other event type (message_start, ping, content_block_stop, ...) is
// skipped.
type anthropicChunk struct {
	Type  string `json:"type"`
	Delta struct {
		Text string `json:"text"`
	} `json:"delta"`
}

type anthropicExtractor struct {
	trim stream.StartTrimmer
}

// Anthropic returns an extractor for the Anthropic messages streaming
// format (content_block_delta events, delta.text).
func Anthropic() stream.Extractor {
	return &anthropicExtractor{}
}

func (e *anthropicExtractor) ExtractToken(data string) (string, bool) {
	var chunk anthropicChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return "", false
	}
	if chunk.Type != "content_block_delta" {
		return "", false
	}
	return e.trim.Trim(chunk.Delta.Text), true
}
