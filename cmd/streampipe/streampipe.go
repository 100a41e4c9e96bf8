// Package streampipecmder
package streampipecmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/streampipeco/streampipe/cmd/streampipe/config"
	initcmder "github.com/streampipeco/streampipe/cmd/streampipe/init"
	servecmder "github.com/streampipeco/streampipe/cmd/streampipe/serve"
	versioncmder "github.com/streampipeco/streampipe/cmd/version"
)

const streampipeLongDesc string = `Streampipe relays LLM provider streams as plain token streams.

Point your client at the relay and it forwards every request to the
configured upstream provider, turning server-sent event streams into
plain text tokens as they arrive.

Run the relay using:
  streampipe serve`

const streampipeShortDesc string = "Streampipe - LLM stream relay"

func NewStreampipeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "streampipe",
		Short: streampipeShortDesc,
		Long:  streampipeLongDesc,

		// Errors are rendered by main with cliui styling.
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .streampipe/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
