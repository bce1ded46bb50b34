// Package venyrocmder
package venyrocmder

import (
	"github.com/spf13/cobra"

	versioncmder "github.com/papercomputeco/venyro/cmd/version"
	chatcmder "github.com/papercomputeco/venyro/cmd/venyro/chat"
	configcmder "github.com/papercomputeco/venyro/cmd/venyro/config"
	initcmder "github.com/papercomputeco/venyro/cmd/venyro/init"
	invokecmder "github.com/papercomputeco/venyro/cmd/venyro/invoke"
	recordscmder "github.com/papercomputeco/venyro/cmd/venyro/records"
	servecmder "github.com/papercomputeco/venyro/cmd/venyro/serve"
)

const venyroLongDesc string = `Venyro is an AI gateway for product strategy.

One POST endpoint turns a tagged action into a structured Gemini call:
inferStrategy, generateStrategy, generateBlueprint, refineBlueprint,
chatWithStrategy and registrationStep. Every invocation is recorded.

Run services using:
  venyro serve           Run the gateway and the records API together
  venyro serve gateway   Run just the gateway
  venyro serve api       Run just the records API

Talk to a running gateway using:
  venyro invoke <action> [payload]   Call a single action
  venyro chat <message>              Hold a conversation about a strategy
  venyro records list                Inspect recorded invocations`

const venyroShortDesc string = "Venyro - AI Strategy Gateway"

func NewVenyroCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "venyro",
		Short:         venyroShortDesc,
		Long:          venyroLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .venyro/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(invokecmder.NewInvokeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(recordscmder.NewRecordsCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
