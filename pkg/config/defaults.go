package config

import "github.com/streampipeco/streampipe/pkg/extract"

const (
	defaultProvider = extract.ProviderOllama
	defaultUpstream = "http://localhost:11434"
	defaultListen   = ":8080"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Relay: RelayConfig{
			Provider: defaultProvider,
			Upstream: defaultUpstream,
			Listen:   defaultListen,
		},
	}
}
