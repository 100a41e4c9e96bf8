package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent streampipe configuration stored as
// config.toml in the .streampipe/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version int         `toml:"version"`
	Relay   RelayConfig `toml:"relay"`
	Log     LogConfig   `toml:"log"`
}

// RelayConfig holds relay server settings.
type RelayConfig struct {
	Provider    string `toml:"provider,omitempty"`
	Upstream    string `toml:"upstream,omitempty"`
	Listen      string `toml:"listen,omitempty"`
	Passthrough bool   `toml:"passthrough,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Debug bool `toml:"debug,omitempty"`
	JSON  bool `toml:"json,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"relay.provider": {
		get: func(c *Config) string { return c.Relay.Provider },
		set: func(c *Config, v string) error { c.Relay.Provider = v; return nil },
	},
	"relay.upstream": {
		get: func(c *Config) string { return c.Relay.Upstream },
		set: func(c *Config, v string) error { c.Relay.Upstream = v; return nil },
	},
	"relay.listen": {
		get: func(c *Config) string { return c.Relay.Listen },
		set: func(c *Config, v string) error { c.Relay.Listen = v; return nil },
	},
	"relay.passthrough": {
		get: func(c *Config) string { return strconv.FormatBool(c.Relay.Passthrough) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for relay.passthrough: %w", err)
			}
			c.Relay.Passthrough = b
			return nil
		},
	},
	"log.debug": {
		get: func(c *Config) string { return strconv.FormatBool(c.Log.Debug) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for log.debug: %w", err)
			}
			c.Log.Debug = b
			return nil
		},
	},
	"log.json": {
		get: func(c *Config) string { return strconv.FormatBool(c.Log.JSON) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for log.json: %w", err)
			}
			c.Log.JSON = b
			return nil
		},
	},
}
