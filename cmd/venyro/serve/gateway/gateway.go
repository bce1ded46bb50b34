// Package gatewaycmder provides the standalone AI gateway command.
package gatewaycmder

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/venyro/cmd/venyro/services"
	"github.com/papercomputeco/venyro/gateway"
	"github.com/papercomputeco/venyro/pkg/config"
	"github.com/papercomputeco/venyro/pkg/logger"
)

type gatewayCommander struct {
	cfg    *config.Config
	debug  bool
	logger *zap.Logger

	listen          string
	path            string
	model           string
	timeout         uint
	maxHistoryTurns uint
	providerBaseURL string
	maxAttempts     uint
	initialDelay    uint
	sqlitePath      string
	postgresDSN     string
	kafkaBrokers    string
	kafkaTopic      string
}

const gatewayLongDesc string = `Run the AI gateway.

The gateway exposes a single POST endpoint (default /api/gemini) accepting
{"action", "payload", "history", "context"}. Each action is turned into a
prompt with a response schema, sent to Gemini with retries on overload, and
the model's JSON is returned verbatim.

Supported actions: registrationStep, inferStrategy, generateStrategy,
generateBlueprint, refineBlueprint, chatWithStrategy`

const gatewayShortDesc string = "Run the Venyro AI gateway"

var gatewayFlags = []string{
	config.FlagGatewayListenStandalone,
	config.FlagPath,
	config.FlagModel,
	config.FlagTimeout,
	config.FlagMaxHistoryTurns,
	config.FlagProviderBaseURL,
	config.FlagMaxAttempts,
	config.FlagInitialDelay,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
}

func NewGatewayCmd() *cobra.Command {
	cmder := &gatewayCommander{}

	cmd := &cobra.Command{
		Use:   "gateway",
		Short: gatewayShortDesc,
		Long:  gatewayLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, gatewayFlags)
			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagGatewayListenStandalone, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagPath, &cmder.path)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddUintFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)
	config.AddUintFlag(cmd, config.Flags, config.FlagMaxHistoryTurns, &cmder.maxHistoryTurns)
	config.AddStringFlag(cmd, config.Flags, config.FlagProviderBaseURL, &cmder.providerBaseURL)
	config.AddUintFlag(cmd, config.Flags, config.FlagMaxAttempts, &cmder.maxAttempts)
	config.AddUintFlag(cmd, config.Flags, config.FlagInitialDelay, &cmder.initialDelay)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaBrokers, &cmder.kafkaBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaTopic, &cmder.kafkaTopic)

	return cmd
}

func (c *gatewayCommander) run(cmd *cobra.Command) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	driver, err := services.NewStorageDriver(cmd.Context(), c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer driver.Close()

	publisher, err := services.NewPublisher(c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	g, err := gateway.New(services.GatewayConfig(c.cfg, os.Getenv), driver, c.logger, gateway.WithPublisher(publisher))
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}
	defer g.Close()

	return g.Run()
}
