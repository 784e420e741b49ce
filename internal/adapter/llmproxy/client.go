// Package llmproxy provides an HTTP client for the LLM proxy's chat
// completions API, used to draft generated content.
package llmproxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytespace-io/bytespace/internal/domain"
	"github.com/bytespace-io/bytespace/internal/port/llm"
	"github.com/bytespace-io/bytespace/internal/resilience"
)

// Client talks to an OpenAI-compatible LLM proxy. Prompt templates live
// server-side; callers pass a prompt key plus JSON input.
type Client struct {
	baseURL    string
	masterKey  string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// NewClient creates a new LLM proxy client.
func NewClient(baseURL, masterKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		masterKey:  masterKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

type invokeRequest struct {
	PromptKey string          `json:"prompt_key"`
	Input     json.RawMessage `json:"input"`
}

type invokeResponse struct {
	Response     string `json:"response"`
	InvocationID string `json:"invocation_id"`
}

// Invoke runs a server-side prompt template against the proxy.
// Failures map to domain.ErrUpstream so the HTTP boundary renders 502.
func (c *Client) Invoke(ctx context.Context, promptKey string, input []byte) (*llm.Result, error) {
	body, err := json.Marshal(invokeRequest{PromptKey: promptKey, Input: input})
	if err != nil {
		return nil, fmt.Errorf("marshal invoke request: %w", err)
	}

	data, err := c.doRequest(ctx, http.MethodPost, "/v1/prompts/invoke", body)
	if err != nil {
		return nil, fmt.Errorf("invoke prompt %s: %w: %w", promptKey, domain.ErrUpstream, err)
	}

	var resp invokeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal invoke response: %w: %w", domain.ErrUpstream, err)
	}
	return &llm.Result{
		Response:     resp.Response,
		InvocationID: resp.InvocationID,
	}, nil
}

// Health checks whether the proxy is reachable.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/health", nil)
	return err
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var result []byte
	call := func() error {
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		if c.masterKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.masterKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode >= 400 {
			return fmt.Errorf("llm proxy error %d: %s", resp.StatusCode, string(data))
		}

		result = data
		return nil
	}

	if c.breaker != nil {
		if err := c.breaker.Execute(call); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := call(); err != nil {
		return nil, err
	}
	return result, nil
}
