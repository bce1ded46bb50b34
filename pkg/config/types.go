package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent venyro configuration stored as config.toml
// in the .venyro/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version  int            `toml:"version"`
	Gateway  GatewayConfig  `toml:"gateway"`
	Provider ProviderConfig `toml:"provider"`
	Retry    RetryConfig    `toml:"retry"`
	API      APIConfig      `toml:"api"`
	Storage  StorageConfig  `toml:"storage"`
	Events   EventsConfig   `toml:"events"`
	Client   ClientConfig   `toml:"client"`
}

// GatewayConfig holds settings for the AI proxy gateway server.
type GatewayConfig struct {
	Listen          string `toml:"listen,omitempty"`
	Path            string `toml:"path,omitempty"`
	Model           string `toml:"model,omitempty"`
	TimeoutSeconds  uint   `toml:"timeout_seconds,omitempty"`
	MaxHistoryTurns uint   `toml:"max_history_turns,omitempty"`
}

// ProviderConfig holds the upstream LLM provider settings.
// APIKey may be left empty and supplied through GEMINI_API_KEY or API_KEY
// instead, see ResolveAPIKey.
type ProviderConfig struct {
	APIKey  string `toml:"api_key,omitempty"`
	BaseURL string `toml:"base_url,omitempty"`
}

// RetryConfig controls how overloaded provider calls are retried.
type RetryConfig struct {
	MaxAttempts    uint `toml:"max_attempts,omitempty"`
	InitialDelayMs uint `toml:"initial_delay_ms,omitempty"`
}

// APIConfig holds records API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// StorageConfig holds invocation record storage settings shared by the
// gateway and the records API. PostgresDSN wins over SQLitePath; when both
// are empty records are kept in memory.
type StorageConfig struct {
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// EventsConfig holds record event publishing settings.
type EventsConfig struct {
	KafkaBrokers []string `toml:"kafka_brokers,omitempty"`
	KafkaTopic   string   `toml:"kafka_topic,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to the running
// gateway and records API (e.g. venyro invoke).
// Values are full URLs (scheme + host + port).
type ClientConfig struct {
	GatewayTarget string `toml:"gateway_target,omitempty"`
	APITarget     string `toml:"api_target,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"gateway.listen": {
		get: func(c *Config) string { return c.Gateway.Listen },
		set: func(c *Config, v string) error { c.Gateway.Listen = v; return nil },
	},
	"gateway.path": {
		get: func(c *Config) string { return c.Gateway.Path },
		set: func(c *Config, v string) error {
			if !strings.HasPrefix(v, "/") {
				return fmt.Errorf("invalid value for gateway.path: %q must start with /", v)
			}
			c.Gateway.Path = v
			return nil
		},
	},
	"gateway.model": {
		get: func(c *Config) string { return c.Gateway.Model },
		set: func(c *Config, v string) error { c.Gateway.Model = v; return nil },
	},
	"gateway.timeout_seconds": uintKey("gateway.timeout_seconds", func(c *Config) *uint { return &c.Gateway.TimeoutSeconds }),
	"gateway.max_history_turns": uintKey("gateway.max_history_turns", func(c *Config) *uint { return &c.Gateway.MaxHistoryTurns }),
	"provider.api_key": {
		get: func(c *Config) string { return c.Provider.APIKey },
		set: func(c *Config, v string) error { c.Provider.APIKey = v; return nil },
	},
	"provider.base_url": {
		get: func(c *Config) string { return c.Provider.BaseURL },
		set: func(c *Config, v string) error { c.Provider.BaseURL = v; return nil },
	},
	"retry.max_attempts":     uintKey("retry.max_attempts", func(c *Config) *uint { return &c.Retry.MaxAttempts }),
	"retry.initial_delay_ms": uintKey("retry.initial_delay_ms", func(c *Config) *uint { return &c.Retry.InitialDelayMs }),
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"events.kafka_brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.KafkaBrokers, ",") },
		set: func(c *Config, v string) error { c.Events.KafkaBrokers = SplitList(v); return nil },
	},
	"events.kafka_topic": {
		get: func(c *Config) string { return c.Events.KafkaTopic },
		set: func(c *Config, v string) error { c.Events.KafkaTopic = v; return nil },
	},
	"client.gateway_target": {
		get: func(c *Config) string { return c.Client.GatewayTarget },
		set: func(c *Config, v string) error { c.Client.GatewayTarget = v; return nil },
	},
	"client.api_target": {
		get: func(c *Config) string { return c.Client.APITarget },
		set: func(c *Config, v string) error { c.Client.APITarget = v; return nil },
	},
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			n := *field(c)
			if n == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(n), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

// SplitList splits a comma separated value, trimming blanks and dropping
// empty entries.
func SplitList(v string) []string {
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
