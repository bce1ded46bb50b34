// Package gemini implements llm.Generator against Google's Gemini API using
// the google.golang.org/genai SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/papercomputeco/venyro/pkg/llm"
)

const (
	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-2.5-flash"

	jsonMIMEType = "application/json"
)

// Config configures a Gemini client.
type Config struct {
	// APIKey is the Gemini API key. Required.
	APIKey string

	// BaseURL overrides the Gemini API endpoint (used for tests and proxies).
	BaseURL string
}

// Client issues schema-constrained generations through the Gemini API.
type Client struct {
	models *genai.Models
}

// New creates a Gemini client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, llm.ErrMissingCredentials
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &Client{models: client.Models}, nil
}

// GenerateJSON sends req with a forced JSON response type, the request's
// response schema, and extended thinking disabled.
func (c *Client) GenerateJSON(ctx context.Context, req *llm.GenerateRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	resp, err := c.models.GenerateContent(ctx, model, toContents(req.Contents), buildConfig(req))
	if err != nil {
		return "", convertError(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", llm.ErrEmptyResponse
	}

	return text, nil
}

func buildConfig(req *llm.GenerateRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: jsonMIMEType,
		ResponseSchema:   req.Schema,
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr[int32](0),
		},
	}

	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	return cfg
}

func toContents(turns []llm.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		parts := make([]*genai.Part, 0, len(turn.Parts))
		for _, p := range turn.Parts {
			parts = append(parts, genai.NewPartFromText(p.Text))
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.Role(turn.Role)))
	}
	return contents
}

// convertError maps genai API errors onto *llm.ProviderError so retry
// classification does not depend on the SDK.
func convertError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &llm.ProviderError{
			StatusCode: apiErr.Code,
			Status:     apiErr.Status,
			Message:    apiErr.Message,
		}
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &llm.ProviderError{
			StatusCode: apiErrPtr.Code,
			Status:     apiErrPtr.Status,
			Message:    apiErrPtr.Message,
		}
	}

	return err
}
