// Package configcmder provides the config command for managing persistent
// venyro configuration stored in the .venyro/ directory.
package configcmder

import (
	"strings"

	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent venyro configuration.

Configuration is stored as config.toml in the .venyro/ directory and provides
default values for command flags. CLI flags and VENYRO_* environment variables
always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  gateway.listen, gateway.path, gateway.model,
  gateway.timeout_seconds, gateway.max_history_turns,
  provider.api_key, provider.base_url,
  retry.max_attempts, retry.initial_delay_ms,
  api.listen, storage.sqlite_path, storage.postgres_dsn,
  events.kafka_brokers, events.kafka_topic,
  client.gateway_target, client.api_target

Use subcommands to get, set, or list configuration values:
  venyro config set <key> <value>    Set a configuration value
  venyro config get <key>            Get a configuration value
  venyro config list                 List all configuration values

Examples:
  venyro config set gateway.model gemini-2.5-pro
  venyro config set events.kafka_brokers kafka-1:9092,kafka-2:9092
  venyro config get gateway.model
  venyro config list`

const configShortDesc string = "Manage persistent venyro configuration"

// secretKeys are masked when printed.
var secretKeys = map[string]bool{
	"provider.api_key":     true,
	"storage.postgres_dsn": true,
}

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

// displayValue masks secrets, keeping the last four characters of long values.
func displayValue(key, value string) string {
	if !secretKeys[key] || value == "" {
		return value
	}
	if len(value) <= 8 {
		return "****"
	}
	return strings.Repeat("*", 4) + value[len(value)-4:]
}
