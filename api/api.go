package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/venyro/pkg/storage"
)

// Server is the API server for querying Venyro invocation records
type Server struct {
	config Config
	driver storage.Driver
	logger *zap.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The driver is injected to allow sharing with other components
// (e.g., the gateway when both run in one process).
func NewServer(config Config, driver storage.Driver, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		config: config,
		driver: driver,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/records", s.handleListRecords)
	app.Get("/records/stats", s.handleStats)
	app.Get("/records/:id", s.handleGetRecord)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
