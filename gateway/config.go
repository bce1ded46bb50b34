package gateway

import (
	"time"

	"github.com/papercomputeco/venyro/pkg/llm"
	"github.com/papercomputeco/venyro/pkg/retry"
)

const (
	// DefaultPath is the route actions are posted to.
	DefaultPath = "/api/gemini"

	// DefaultTimeout bounds a whole request, retries included.
	DefaultTimeout = 60 * time.Second
)

// Config is the gateway server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// Path is the route actions are posted to. Defaults to DefaultPath.
	Path string

	// Model is the provider model name (e.g., "gemini-2.5-flash").
	Model string

	// APIKey is the provider credential, resolved once at startup.
	// When empty every action is rejected with a configuration error.
	APIKey string

	// ProviderBaseURL overrides the provider endpoint.
	ProviderBaseURL string

	// Timeout bounds a whole request, retries included. Defaults to DefaultTimeout.
	Timeout time.Duration

	// Retry controls how transient provider overloads are retried.
	Retry retry.Config

	// History bounds replayed conversations.
	History llm.HistoryPolicy
}

func (c Config) withDefaults() Config {
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
