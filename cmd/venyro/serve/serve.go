// Package servecmder provides the serve command with subcommands for running services.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/venyro/api"
	"github.com/papercomputeco/venyro/cmd/venyro/services"
	apicmder "github.com/papercomputeco/venyro/cmd/venyro/serve/api"
	gatewaycmder "github.com/papercomputeco/venyro/cmd/venyro/serve/gateway"
	"github.com/papercomputeco/venyro/gateway"
	"github.com/papercomputeco/venyro/pkg/config"
	"github.com/papercomputeco/venyro/pkg/logger"
)

type ServeCommander struct {
	cfg     *config.Config
	debug   bool
	logFile string
	logger  *zap.Logger

	// flag targets, read back through viper
	gatewayListen   string
	apiListen       string
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

const serveLongDesc string = `Run Venyro services.

Use subcommands to run individual services or all services together:
  venyro serve           Run both the gateway and the records API together
  venyro serve gateway   Run just the AI gateway
  venyro serve api       Run just the records API

The provider API key is read from provider.api_key, then GEMINI_API_KEY,
then API_KEY. Without one the gateway still starts but rejects every action.`

const serveShortDesc string = "Run Venyro services"

var serveFlags = []string{
	config.FlagGatewayListen,
	config.FlagAPIListen,
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

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, serveFlags)
			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagGatewayListen, &cmder.gatewayListen)
	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.apiListen)
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
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")

	cmd.AddCommand(apicmder.NewAPICmd())
	cmd.AddCommand(gatewaycmder.NewGatewayCmd())

	return cmd
}

func (c *ServeCommander) run(ctx context.Context) error {
	var closeLog func() error
	var err error
	c.logger, closeLog, err = newLogger(c.debug, c.logFile)
	if err != nil {
		return err
	}
	defer closeLog()
	defer func() { _ = c.logger.Sync() }()

	// Create shared driver
	driver, err := services.NewStorageDriver(ctx, c.cfg, c.logger)
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

	apiServer := api.NewServer(api.Config{ListenAddr: c.cfg.API.Listen}, driver, c.logger)
	defer apiServer.Shutdown()

	// Channel to capture errors from goroutines
	errChan := make(chan error, 2)

	go func() {
		if err := g.Run(); err != nil {
			errChan <- fmt.Errorf("gateway error: %w", err)
		}
	}()

	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return nil
	}
}

// newLogger builds the console logger, teeing JSON to logFile when set.
func newLogger(debug bool, logFile string) (*zap.Logger, func() error, error) {
	console := logger.NewLogger(debug)
	if logFile == "" {
		return console, func() error { return nil }, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	file := logger.New(logger.WithDebug(debug), logger.WithJSON(true), logger.WithWriter(f))
	return logger.Multi(console, file), f.Close, nil
}
