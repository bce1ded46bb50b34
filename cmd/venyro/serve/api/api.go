// Package apicmder provides the records API venyro server cobra command.
package apicmder

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/venyro/api"
	"github.com/papercomputeco/venyro/cmd/venyro/services"
	"github.com/papercomputeco/venyro/pkg/config"
	"github.com/papercomputeco/venyro/pkg/logger"
)

type apiCommander struct {
	cfg    *config.Config
	debug  bool
	logger *zap.Logger

	listen      string
	sqlitePath  string
	postgresDSN string
}

const apiLongDesc string = `Run the Venyro records API for inspecting gateway invocations.

Endpoints:
  GET /records?action=&limit=   Most recent invocation records
  GET /records/:id              A single record
  GET /records/stats            Counts by action and status

Point it at the same --sqlite or --postgres store as the gateway.`

const apiShortDesc string = "Run the Venyro records API"

var apiFlags = []string{
	config.FlagAPIListenStandalone,
	config.FlagSQLite,
	config.FlagPostgres,
}

func NewAPICmd() *cobra.Command {
	cmder := &apiCommander{}

	cmd := &cobra.Command{
		Use:   "api",
		Short: apiShortDesc,
		Long:  apiLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, apiFlags)
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

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListenStandalone, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)

	return cmd
}

func (c *apiCommander) run(cmd *cobra.Command) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	driver, err := services.NewStorageDriver(cmd.Context(), c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer driver.Close()

	server := api.NewServer(api.Config{ListenAddr: c.cfg.API.Listen}, driver, c.logger)

	return server.Run()
}
