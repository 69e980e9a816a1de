// Package llm wraps the external text-generation endpoint behind a small
// interface so pipeline components can be tested without a live model.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/infrax/infra-engine/internal/types"
)

// Completer is the opaque capability the pipeline consumes: prompt in,
// text out. Calls may fail or time out; callers treat either as a step
// failure.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client is an HTTP Completer talking to a completion service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type completionRequest struct {
	Prompt string `json:"prompt"`
}

type completionResponse struct {
	Text string `json:"text"`
}

// NewClient creates a client with a bounded per-call timeout. The rest of
// the system assumes every call resolves within that window.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetBaseURL overrides the endpoint, for tests against httptest servers
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// Complete sends one prompt and returns the model's text
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(completionRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/complete", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &types.UpstreamError{Service: "model endpoint", Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &types.UpstreamError{
			Service: "model endpoint",
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}

	return out.Text, nil
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
