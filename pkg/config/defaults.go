package config

const (
	defaultGatewayListen   = ":8080"
	defaultGatewayPath     = "/api/gemini"
	defaultModel           = "gemini-2.5-flash"
	defaultTimeoutSeconds  = 60
	defaultMaxHistoryTurns = 50

	defaultMaxAttempts    = 3
	defaultInitialDelayMs = 1000

	defaultAPIListen = ":8081"

	defaultKafkaTopic = "venyro.generations"

	defaultClientGatewayTarget = "http://localhost:8080"
	defaultClientAPITarget     = "http://localhost:8081"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Gateway: GatewayConfig{
			Listen:          defaultGatewayListen,
			Path:            defaultGatewayPath,
			Model:           defaultModel,
			TimeoutSeconds:  defaultTimeoutSeconds,
			MaxHistoryTurns: defaultMaxHistoryTurns,
		},
		Retry: RetryConfig{
			MaxAttempts:    defaultMaxAttempts,
			InitialDelayMs: defaultInitialDelayMs,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Events: EventsConfig{
			KafkaTopic: defaultKafkaTopic,
		},
		Client: ClientConfig{
			GatewayTarget: defaultClientGatewayTarget,
			APITarget:     defaultClientAPITarget,
		},
	}
}
