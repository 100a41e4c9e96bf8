package relay

// Config is the relay server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// UpstreamURL is the upstream LLM provider URL (e.g., "http://localhost:11434")
	UpstreamURL string

	// Provider specifies the LLM provider type (e.g., "anthropic", "openai", "ollama")
	// This determines how streaming payloads are decoded into tokens.
	Provider string

	// Passthrough forwards the upstream SSE stream verbatim instead of
	// transforming it into a plain-text token stream. Tokens are still
	// extracted for recording.
	Passthrough bool
}
