package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/papercomputeco/venyro/pkg/storage"
)

// RecordList is the body of GET /records.
type RecordList struct {
	Count   int               `json:"count"`
	Records []*storage.Record `json:"records"`
}

// RecordsClient reads invocation records from the records API.
type RecordsClient struct {
	target     string
	httpClient *http.Client
}

// NewRecordsClient creates a client for the records API at target,
// e.g. "http://localhost:8081".
func NewRecordsClient(target string) *RecordsClient {
	return &RecordsClient{
		target:     strings.TrimRight(target, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// List returns the most recent records, optionally filtered by action.
// A zero limit uses the server default.
func (c *RecordsClient) List(ctx context.Context, action string, limit int) (*RecordList, error) {
	query := url.Values{}
	if action != "" {
		query.Set("action", action)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	path := "/records"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	list := &RecordList{}
	if err := c.get(ctx, path, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Get returns a single record. A missing record yields an *Error with
// StatusCode 404.
func (c *RecordsClient) Get(ctx context.Context, id string) (*storage.Record, error) {
	record := &storage.Record{}
	if err := c.get(ctx, "/records/"+url.PathEscape(id), record); err != nil {
		return nil, err
	}
	return record, nil
}

// Stats returns aggregate counts over all records.
func (c *RecordsClient) Stats(ctx context.Context) (*storage.Stats, error) {
	stats := storage.NewStats()
	if err := c.get(ctx, "/records/stats", stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (c *RecordsClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.target+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling records API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{StatusCode: resp.StatusCode, Message: errorMessage(body, resp.Status)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
