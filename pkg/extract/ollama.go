package extract

import (
	"encoding/json"

	"github.com/streampipeco/streampipe/pkg/stream"
)

// ollamaChunk is the subset of an Ollama /api/chat streaming chunk we care
// about: the assistant message fragment.
type ollamaChunk struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

type ollamaExtractor struct {
	trim stream.StartTrimmer
}

// Ollama returns an extractor for the Ollama chat streaming format
// (message.content).
func Ollama() stream.Extractor {
	return &ollamaExtractor{}
}

func (e *ollamaExtractor) ExtractToken(data string) (string, bool) {
	var chunk ollamaChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return "", false
	}
	return e.trim.Trim(chunk.Message.Content), true
}
