// Package configcmder provides the config command for managing persistent
// edrila configuration stored in the .edrila/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent edrila configuration.

Configuration is stored as config.toml in the .edrila/ directory and provides
default values for command flags. CLI flags and EDRILA_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  assistant.endpoint, assistant.token, assistant.timeout_seconds,
  storage.sqlite_path, storage.postgres_dsn,
  events.kafka_brokers, events.kafka_topic,
  devserver.listen, devserver.jwt_secret

Use subcommands to get, set, or list configuration values:
  edrila config set <key> <value>    Set a configuration value
  edrila config get <key>            Get a configuration value
  edrila config list                 List all configuration values

Examples:
  edrila config set assistant.endpoint https://panel.example.com/api/ai/chat
  edrila config set events.kafka_brokers broker-1:9092,broker-2:9092
  edrila config get assistant.endpoint
  edrila config list`

const configShortDesc string = "Manage persistent edrila configuration"

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
