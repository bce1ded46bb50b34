// Package client provides small HTTP clients for the Venyro gateway and records API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/venyro/pkg/llm"
)

// DefaultPath is the gateway route actions are posted to.
const DefaultPath = "/api/gemini"

// Request is the body sent to the gateway.
type Request struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
	History []llm.Turn      `json:"history,omitempty"`
	Context string          `json:"context,omitempty"`
}

// Error is returned for non-2xx gateway responses.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.Message)
}

// Client posts actions to a gateway.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates a client for the gateway at target, e.g. "http://localhost:8080".
// Path defaults to DefaultPath.
func New(target, path string) *Client {
	if path == "" {
		path = DefaultPath
	}

	return &Client{
		endpoint: strings.TrimRight(target, "/") + "/" + strings.TrimLeft(path, "/"),
		httpClient: &http.Client{
			// Upstream retries with backoff can approach the gateway's own timeout
			Timeout: 90 * time.Second,
		},
	}
}

// Invoke posts req and returns the raw JSON result on success.
func (c *Client) Invoke(ctx context.Context, req Request) (json.RawMessage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling gateway: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{StatusCode: resp.StatusCode, Message: errorMessage(respBody, resp.Status)}
	}

	if !json.Valid(respBody) {
		return nil, errors.New("gateway returned invalid JSON")
	}

	return json.RawMessage(respBody), nil
}

func errorMessage(body []byte, status string) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return status
}
