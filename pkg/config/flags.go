package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --sqlite
// on both "venyro serve" and "venyro serve api").
type Flag struct {
	// Name is the long flag name (e.g. "sqlite").
	Name string

	// Shorthand is the one-letter short flag (e.g. "s"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "storage.sqlite_path").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagGatewayListen   = "gateway-listen"
	FlagAPIListen       = "api-listen"
	FlagPath            = "path"
	FlagModel           = "model"
	FlagTimeout         = "timeout"
	FlagMaxHistoryTurns = "max-history-turns"
	FlagProviderBaseURL = "provider-base-url"
	FlagMaxAttempts     = "max-attempts"
	FlagInitialDelay    = "initial-delay-ms"
	FlagSQLite          = "sqlite"
	FlagPostgres        = "postgres"
	FlagKafkaBrokers    = "kafka-brokers"
	FlagKafkaTopic      = "kafka-topic"
	FlagGatewayTarget   = "gateway-target"
	FlagAPITarget       = "api-target"

	// Standalone subcommand variants use "listen" as the flag name
	// but bind to different viper keys depending on the service.
	FlagGatewayListenStandalone = "gateway-listen-standalone"
	FlagAPIListenStandalone     = "api-listen-standalone"
)

// Flags is the registry shared by every venyro command.
var Flags = FlagSet{
	FlagGatewayListen:   {Name: "gateway-listen", Shorthand: "g", ViperKey: "gateway.listen", Description: "Address for the gateway to listen on"},
	FlagAPIListen:       {Name: "api-listen", Shorthand: "a", ViperKey: "api.listen", Description: "Address for the records API to listen on"},
	FlagPath:            {Name: "path", ViperKey: "gateway.path", Description: "HTTP path serving gateway actions"},
	FlagModel:           {Name: "model", Shorthand: "m", ViperKey: "gateway.model", Description: "Gemini model used for every action"},
	FlagTimeout:         {Name: "timeout", ViperKey: "gateway.timeout_seconds", Description: "Per-request deadline in seconds"},
	FlagMaxHistoryTurns: {Name: "max-history-turns", ViperKey: "gateway.max_history_turns", Description: "Most recent conversation turns replayed to the provider"},
	FlagProviderBaseURL: {Name: "provider-base-url", ViperKey: "provider.base_url", Description: "Override the Gemini API base URL"},
	FlagMaxAttempts:     {Name: "max-attempts", ViperKey: "retry.max_attempts", Description: "Provider calls per action, including the first"},
	FlagInitialDelay:    {Name: "initial-delay-ms", ViperKey: "retry.initial_delay_ms", Description: "First retry backoff in milliseconds, doubled per attempt"},
	FlagSQLite:          {Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path", Description: "Path to SQLite database (default: in-memory)"},
	FlagPostgres:        {Name: "postgres", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL connection string, takes precedence over --sqlite"},
	FlagKafkaBrokers:    {Name: "kafka-brokers", ViperKey: "events.kafka_brokers", Description: "Comma separated Kafka brokers for record events (default: disabled)"},
	FlagKafkaTopic:      {Name: "kafka-topic", ViperKey: "events.kafka_topic", Description: "Kafka topic for record events"},
	FlagGatewayTarget:   {Name: "gateway-target", ViperKey: "client.gateway_target", Description: "Gateway URL used by client commands"},
	FlagAPITarget:       {Name: "api-target", ViperKey: "client.api_target", Description: "Records API URL used by client commands"},

	FlagGatewayListenStandalone: {Name: "listen", Shorthand: "l", ViperKey: "gateway.listen", Description: "Address for the gateway to listen on"},
	FlagAPIListenStandalone:     {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for the records API to listen on"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
