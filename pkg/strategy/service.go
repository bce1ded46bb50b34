package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/venyro/pkg/llm"
	"github.com/papercomputeco/venyro/pkg/retry"
)

// Config configures a Service.
type Config struct {
	// Generator performs the model calls. Required.
	Generator llm.Generator

	// Model is the provider model name. Empty uses the generator's default.
	Model string

	// Retry controls how transient provider overloads are retried.
	Retry retry.Config

	// History bounds the conversation replayed by refineBlueprint and
	// chatWithStrategy.
	History llm.HistoryPolicy

	// OnAttempt, if set, is called once per provider call with its outcome.
	OnAttempt func(a Action, outcome AttemptOutcome)

	Logger *zap.Logger
}

// AttemptOutcome labels a single provider call.
type AttemptOutcome string

const (
	// AttemptRetried is a call that failed with an overload and was retried.
	AttemptRetried AttemptOutcome = "retried"

	// AttemptSucceeded is a call that returned text.
	AttemptSucceeded AttemptOutcome = "succeeded"

	// AttemptFailed is a final call that returned an error.
	AttemptFailed AttemptOutcome = "failed"
)

// Service executes gateway actions.
type Service struct {
	gen     llm.Generator
	model   string
	retry   retry.Config
	history   llm.HistoryPolicy
	onAttempt func(Action, AttemptOutcome)
	logger    *zap.Logger
}

// Input carries the caller-supplied parts of an action request.
type Input struct {
	Payload json.RawMessage
	History []llm.Turn
	Context string
}

// Result is the outcome of an action.
type Result struct {
	// Data is the provider's JSON text, unmodified.
	Data json.RawMessage

	// Attempts is the number of provider calls made.
	Attempts int

	// HistoryTurns is the number of turns replayed after the history policy
	// was applied. Zero for single-prompt actions.
	HistoryTurns int
}

// New creates a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Generator == nil {
		return nil, errors.New("generator is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		gen:       cfg.Generator,
		model:     cfg.Model,
		retry:     cfg.Retry,
		history:   cfg.History,
		onAttempt: cfg.OnAttempt,
		logger:    logger,
	}, nil
}

// Execute runs action a. When a provider call was made the returned Result is
// non-nil even if err is not, so callers can record the attempt count.
func (s *Service) Execute(ctx context.Context, a Action, in Input) (*Result, error) {
	req := &llm.GenerateRequest{
		Model:  s.model,
		Schema: SchemaFor(a),
	}
	result := &Result{}

	switch a {
	case RegistrationStep, InferStrategy, GenerateStrategy, GenerateBlueprint:
		prompt, err := buildPrompt(a, in.Payload, in.Context)
		if err != nil {
			return nil, err
		}
		req.Contents = []llm.Turn{llm.NewTextTurn(llm.RoleUser, prompt)}

	case RefineBlueprint, ChatWithStrategy:
		history, err := s.history.Apply(in.History)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		if dropped := len(in.History) - len(history); dropped > 0 {
			s.logger.Debug("truncated conversation history",
				zap.String("action", a.String()),
				zap.Int("dropped", dropped),
				zap.Int("kept", len(history)),
			)
		}
		req.Contents = history
		req.SystemInstruction = strings.TrimSpace(in.Context)
		result.HistoryTurns = len(history)

	default:
		return nil, &UnsupportedActionError{Name: a.String()}
	}

	retried := 0
	cfg := s.retry
	hook := cfg.OnRetry
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		retried++
		s.observe(a, AttemptRetried)
		s.logger.Warn("provider overloaded, retrying",
			zap.String("action", a.String()),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		if hook != nil {
			hook(attempt, delay, err)
		}
	}

	text, attempts, err := retry.Do(ctx, cfg, func(ctx context.Context) (string, error) {
		return s.gen.GenerateJSON(ctx, req)
	})
	result.Attempts = attempts

	// A deadline hit during backoff leaves no final call to report.
	if attempts > retried {
		if err != nil {
			s.observe(a, AttemptFailed)
		} else {
			s.observe(a, AttemptSucceeded)
		}
	}
	if err != nil {
		return result, err
	}

	if err := ValidateOutput(text, req.Schema); err != nil {
		s.logger.Debug("provider output rejected",
			zap.String("action", a.String()),
			zap.Error(err),
		)
		return result, err
	}

	result.Data = json.RawMessage(text)
	return result, nil
}

func (s *Service) observe(a Action, outcome AttemptOutcome) {
	if s.onAttempt != nil {
		s.onAttempt(a, outcome)
	}
}
