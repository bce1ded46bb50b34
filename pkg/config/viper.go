package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/venyro/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the VENYRO_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (VENYRO_GATEWAY_LISTEN, VENYRO_API_LISTEN, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: VENYRO_GATEWAY_LISTEN, VENYRO_STORAGE_SQLITE_PATH, etc.
	v.SetEnvPrefix("VENYRO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Gateway
	v.SetDefault("gateway.listen", d.Gateway.Listen)
	v.SetDefault("gateway.path", d.Gateway.Path)
	v.SetDefault("gateway.model", d.Gateway.Model)
	v.SetDefault("gateway.timeout_seconds", d.Gateway.TimeoutSeconds)
	v.SetDefault("gateway.max_history_turns", d.Gateway.MaxHistoryTurns)

	// Provider
	v.SetDefault("provider.api_key", d.Provider.APIKey)
	v.SetDefault("provider.base_url", d.Provider.BaseURL)

	// Retry
	v.SetDefault("retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("retry.initial_delay_ms", d.Retry.InitialDelayMs)

	// API
	v.SetDefault("api.listen", d.API.Listen)

	// Storage
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)

	// Events
	v.SetDefault("events.kafka_brokers", d.Events.KafkaBrokers)
	v.SetDefault("events.kafka_topic", d.Events.KafkaTopic)

	// Client
	v.SetDefault("client.gateway_target", d.Client.GatewayTarget)
	v.SetDefault("client.api_target", d.Client.APITarget)
}

// FromViper builds a Config from the resolved viper values so flag, env, file
// and default layers are all applied.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Gateway: GatewayConfig{
			Listen:          v.GetString("gateway.listen"),
			Path:            v.GetString("gateway.path"),
			Model:           v.GetString("gateway.model"),
			TimeoutSeconds:  v.GetUint("gateway.timeout_seconds"),
			MaxHistoryTurns: v.GetUint("gateway.max_history_turns"),
		},
		Provider: ProviderConfig{
			APIKey:  v.GetString("provider.api_key"),
			BaseURL: v.GetString("provider.base_url"),
		},
		Retry: RetryConfig{
			MaxAttempts:    v.GetUint("retry.max_attempts"),
			InitialDelayMs: v.GetUint("retry.initial_delay_ms"),
		},
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
		Storage: StorageConfig{
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
		},
		Events: EventsConfig{
			KafkaBrokers: brokerList(v.GetStringSlice("events.kafka_brokers")),
			KafkaTopic:   v.GetString("events.kafka_topic"),
		},
		Client: ClientConfig{
			GatewayTarget: v.GetString("client.gateway_target"),
			APITarget:     v.GetString("client.api_target"),
		},
	}
}

// brokerList flattens slice values that came in as a single comma separated
// string, which is how env vars and string flags arrive.
func brokerList(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, SplitList(v)...)
	}
	return out
}
