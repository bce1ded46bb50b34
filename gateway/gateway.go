// Package gateway provides the Venyro AI proxy gateway: a single POST endpoint
// that dispatches a tagged action to its prompt/schema handler, calls the LLM
// provider with retries, and returns the provider's JSON or a normalized error.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/venyro/gateway/worker"
	"github.com/papercomputeco/venyro/pkg/eventstream"
	"github.com/papercomputeco/venyro/pkg/llm"
	"github.com/papercomputeco/venyro/pkg/llm/provider/gemini"
	"github.com/papercomputeco/venyro/pkg/metrics"
	"github.com/papercomputeco/venyro/pkg/storage"
	"github.com/papercomputeco/venyro/pkg/strategy"
	"github.com/papercomputeco/venyro/pkg/utils"
)

const (
	// RecordIDHeader carries the ID of the invocation record on every response.
	RecordIDHeader = "X-Venyro-Record-Id"

	// unknownAction labels metrics for requests whose action could not be parsed.
	unknownAction = "unknown"

	maxRecordedActionLen = 64
)

// actionRequest is the body posted to the gateway.
type actionRequest struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
	History []llm.Turn      `json:"history"`
	Context string          `json:"context"`
}

// Gateway is the AI proxy gateway server.
type Gateway struct {
	config     Config
	service    *strategy.Service
	workerPool *worker.Pool
	metrics    *metrics.Metrics
	logger     *zap.Logger
	server     *fiber.App
}

// Option customizes a Gateway.
type Option func(*options)

type options struct {
	generator llm.Generator
	publisher eventstream.Publisher
}

// WithGenerator replaces the Gemini provider, mainly for tests.
func WithGenerator(g llm.Generator) Option {
	return func(o *options) { o.generator = g }
}

// WithPublisher announces every stored record on p.
func WithPublisher(p eventstream.Publisher) Option {
	return func(o *options) { o.publisher = p }
}

// New creates a new Gateway.
// The driver is injected to allow sharing with the records API when both run
// in one process. A missing API key is not an error here: the gateway starts
// and rejects every action with a configuration error.
func New(config Config, driver storage.Driver, logger *zap.Logger, opts ...Option) (*Gateway, error) {
	config = config.withDefaults()

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	gen := o.generator
	if gen == nil {
		if config.APIKey == "" {
			logger.Warn("no provider API key configured, all actions will fail")
			gen = llm.GeneratorFunc(func(context.Context, *llm.GenerateRequest) (string, error) {
				return "", llm.ErrMissingCredentials
			})
		} else {
			client, err := gemini.New(context.Background(), gemini.Config{
				APIKey:  config.APIKey,
				BaseURL: config.ProviderBaseURL,
			})
			if err != nil {
				return nil, fmt.Errorf("could not create gemini client: %w", err)
			}
			gen = client
		}
	}

	m := metrics.New()

	svc, err := strategy.New(strategy.Config{
		Generator: gen,
		Model:     config.Model,
		Retry:     config.Retry,
		History:   config.History,
		OnAttempt: func(a strategy.Action, outcome strategy.AttemptOutcome) {
			m.ObserveAttempt(a.String(), string(outcome))
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create strategy service: %w", err)
	}

	wp, err := worker.NewPool(&worker.Config{
		Driver:    driver,
		Publisher: o.publisher,
		Source: eventstream.EventSource{
			Gateway:  config.Path,
			Provider: "gemini",
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create worker pool: %w", err)
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	g := &Gateway{
		config:     config,
		service:    svc,
		workerPool: wp,
		metrics:    m,
		logger:     logger,
		server:     app,
	}

	app.Get("/ping", g.handlePing)
	app.Get("/metrics", adaptor.HTTPHandler(g.metrics.Handler()))
	app.Post(config.Path, g.handleAction)
	app.All(config.Path, g.handleMethodNotAllowed)

	return g, nil
}

// Run starts the gateway server on the configured address.
func (g *Gateway) Run() error {
	g.logger.Info("starting gateway server",
		zap.String("listen", g.config.ListenAddr),
		zap.String("path", g.config.Path),
		zap.String("model", g.config.Model),
	)

	return g.server.Listen(g.config.ListenAddr)
}

// RunWithListener starts the gateway server using the provided listener.
func (g *Gateway) RunWithListener(listener net.Listener) error {
	g.logger.Info("starting gateway server",
		zap.String("listen", listener.Addr().String()),
		zap.String("path", g.config.Path),
	)

	return g.server.Listener(listener)
}

// Close stops accepting requests, then waits for the worker pool to drain.
func (g *Gateway) Close() error {
	err := g.server.Shutdown()
	g.workerPool.Close()
	return err
}

func (g *Gateway) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

func (g *Gateway) handleMethodNotAllowed(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAllow, fiber.MethodPost)
	return c.Status(fiber.StatusMethodNotAllowed).JSON(llm.ErrorResponse{Error: "Method not allowed"})
}

// handleAction dispatches a single action request. Credentials are checked
// before the body is interpreted, so a misconfigured gateway never reaches the
// provider regardless of the action.
func (g *Gateway) handleAction(c *fiber.Ctx) error {
	startTime := time.Now()
	record := &storage.Record{
		ID:        uuid.NewString(),
		Model:     g.modelName(),
		StartedAt: startTime.UTC(),
	}
	c.Set(RecordIDHeader, record.ID)

	var req actionRequest
	bodyErr := json.Unmarshal(c.Body(), &req)
	record.Action = utils.Truncate(req.Action, maxRecordedActionLen)
	action, actionErr := strategy.ParseAction(req.Action)

	switch {
	case g.config.APIKey == "":
		return g.fail(c, record, startTime, failure{fiber.StatusInternalServerError, kindConfiguration, msgMissingCredentials}, llm.ErrMissingCredentials)
	case bodyErr != nil:
		return g.fail(c, record, startTime, failure{fiber.StatusBadRequest, kindInvalidRequest, msgInvalidBody}, bodyErr)
	case actionErr != nil:
		return g.fail(c, record, startTime, normalize(actionErr), actionErr)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), g.config.Timeout)
	defer cancel()

	result, err := g.service.Execute(ctx, action, strategy.Input{
		Payload: req.Payload,
		History: req.History,
		Context: req.Context,
	})
	if result != nil {
		record.Attempts = result.Attempts
		record.HistoryTurns = result.HistoryTurns
	}
	if err != nil {
		return g.fail(c, record, startTime, normalize(err), err)
	}

	record.Status = storage.StatusSucceeded
	record.HTTPStatus = fiber.StatusOK
	record.Result = result.Data
	g.finish(record, startTime)

	g.logger.Debug("action completed",
		zap.String("record_id", record.ID),
		zap.String("action", record.Action),
		zap.Int("attempts", record.Attempts),
		zap.Int64("duration_ms", record.DurationMs),
	)

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(result.Data)
}

// fail records a failed invocation and writes the normalized error body.
func (g *Gateway) fail(c *fiber.Ctx, record *storage.Record, startTime time.Time, f failure, cause error) error {
	record.Status = storage.StatusFailed
	record.HTTPStatus = f.status
	record.ErrorKind = f.kind
	record.Error = f.message
	g.finish(record, startTime)

	log := g.logger.Warn
	if f.status >= fiber.StatusInternalServerError {
		log = g.logger.Error
	}
	log("action failed",
		zap.String("record_id", record.ID),
		zap.String("action", record.Action),
		zap.String("kind", f.kind),
		zap.Int("status", f.status),
		zap.Int("attempts", record.Attempts),
		zap.Error(cause),
	)

	return c.Status(f.status).JSON(llm.ErrorResponse{Error: f.message})
}

// finish stamps completion, observes metrics, and hands the record to the
// worker pool.
func (g *Gateway) finish(record *storage.Record, startTime time.Time) {
	elapsed := time.Since(startTime)
	record.CompletedAt = startTime.Add(elapsed).UTC()
	record.DurationMs = elapsed.Milliseconds()

	label := unknownAction
	if _, err := strategy.ParseAction(record.Action); err == nil {
		label = record.Action
	}
	g.metrics.ObserveRequest(label, record.HTTPStatus, elapsed)

	g.workerPool.Enqueue(worker.Job{Record: record})
}

func (g *Gateway) modelName() string {
	if g.config.Model != "" {
		return g.config.Model
	}
	return gemini.DefaultModel
}
