// Package configcmder provides the config command for managing persistent
// streampipe configuration stored in the .streampipe/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent streampipe configuration.

Configuration is stored as config.toml in the .streampipe/ directory and
provides default values for command flags. CLI flags and STREAMPIPE_*
environment variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  relay.provider, relay.upstream, relay.listen, relay.passthrough,
  log.debug, log.json

Use subcommands to get, set, or list configuration values:
  streampipe config set <key> <value>    Set a configuration value
  streampipe config get <key>            Get a configuration value
  streampipe config list                 List all configuration values

Examples:
  streampipe config set relay.provider anthropic
  streampipe config set relay.upstream https://api.anthropic.com
  streampipe config get relay.provider
  streampipe config list`

const configShortDesc string = "Manage persistent streampipe configuration"

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
