package extract

import (
	"encoding/json"

	"github.com/streampipeco/streampipe/pkg/stream"
)

// openaiChunk is the subset of an OpenAI chat completion chunk we care
// about: the incremental delta of the first choice.
type openaiChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

type openaiExtractor struct {
	trim stream.StartTrimmer
}

// OpenAI returns an extractor for the OpenAI chat completions streaming
// format (choices[0].delta.content).
func OpenAI() stream.Extractor {
	return &openaiExtractor{}
}

func (e *openaiExtractor) ExtractToken(data string) (string, bool) {
	var chunk openaiChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return "", false
	}
	if len(chunk.Choices) == 0 {
		return "", false
	}
	return e.trim.Trim(chunk.Choices[0].Delta.Content), true
}
