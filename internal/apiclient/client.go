package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ThatCatDev/modelinspect/internal/record"
	"github.com/ThatCatDev/modelinspect/pkg/api"
)

// Client is a typed HTTP client for the local model-serving daemon.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new Client for the given daemon URL. A zero timeout leaves
// requests bounded only by their context.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the daemon URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListModels returns the models installed on the daemon.
func (c *Client) ListModels(ctx context.Context) (*api.ListResponse, error) {
	var result api.ListResponse
	if err := c.getJSON(ctx, "/api/tags", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Show returns the configuration record of one model, keys in the order the
// daemon sent them.
func (c *Client) Show(ctx context.Context, model string) (*record.Record, error) {
	body, err := json.Marshal(api.ShowRequest{Model: model})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	raw, err := c.post(ctx, "/api/show", body)
	if err != nil {
		return nil, err
	}

	rec, err := record.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return rec, nil
}

// --- Internal helpers ---

func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

func (c *Client) getJSON(ctx context.Context, path string, result any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return statusError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// StatusError is returned when the daemon answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("daemon returned %d: %s", e.StatusCode, e.Message)
}

func statusError(code int, body []byte) error {
	var envelope api.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return &StatusError{StatusCode: code, Message: envelope.Error}
	}
	return &StatusError{StatusCode: code, Message: strings.TrimSpace(string(body))}
}
