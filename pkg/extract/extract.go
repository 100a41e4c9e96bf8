// Package extract provides token extractors for the streaming response
// formats of the supported LLM providers. Each extractor knows one
// provider's SSE payload shape and pulls the incremental text token out of
// it, trimming whitespace from the very start of the stream so downstream
// consumers never see a completion that opens with a stray newline.
//
// Extractors carry per-stream state and must be constructed fresh for every
// response they decode.
package extract

import (
	"errors"
	"fmt"

	"github.com/streampipeco/streampipe/pkg/stream"
)

// Provider names accepted by ForProvider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderRaw       = "raw"
)

// ErrUnsupportedProvider is returned by ForProvider for an unknown name.
var ErrUnsupportedProvider = errors.New("unsupported provider")

// ForProvider returns a fresh extractor for the named provider. The
// extractor is stateful and good for exactly one stream.
func ForProvider(name string) (stream.Extractor, error) {
	switch name {
	case ProviderOpenAI:
		return OpenAI(), nil
	case ProviderAnthropic:
		return Anthropic(), nil
	case ProviderOllama:
		return Ollama(), nil
	case ProviderRaw:
		return Raw(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, name)
	}
}

// Supported lists the provider names ForProvider accepts.
func Supported() []string {
	return []string{ProviderOpenAI, ProviderAnthropic, ProviderOllama, ProviderRaw}
}
