// Package webhook forwards played deltas to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout applies when SendOptions.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// UserAgent is sent with every request.
const UserAgent = "logplay-webhook"

// maxResponseBody caps how much of a response body is kept.
const maxResponseBody = 64 * 1024

// Client posts JSON payloads to webhook endpoints.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new webhook client.
func NewClient() *Client {
	return &Client{httpClient: &http.Client{}}
}

// SendOptions configures a webhook request.
type SendOptions struct {
	URL     string
	Token   string        // bearer token, optional
	Timeout time.Duration // DefaultTimeout if zero
}

// Response is the outcome of one delivery.
type Response struct {
	StatusCode int
	Body       string
	Duration   time.Duration
	Error      error
}

// Success reports a delivery that got a 2xx answer.
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Send posts payload as JSON. Failures are reported in the Response, never returned.
func (c *Client) Send(ctx context.Context, payload any, opts SendOptions) *Response {
	start := time.Now()
	resp := &Response{}
	defer func() { resp.Duration = time.Since(start) }()

	body, err := json.Marshal(payload)
	if err != nil {
		resp.Error = fmt.Errorf("encoding payload: %w", err)
		return resp
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, bytes.NewReader(body))
	if err != nil {
		resp.Error = fmt.Errorf("building request: %w", err)
		return resp
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		resp.Error = fmt.Errorf("request failed: %w", err)
		return resp
	}
	defer httpResp.Body.Close()

	resp.StatusCode = httpResp.StatusCode
	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		resp.Error = fmt.Errorf("reading response: %w", err)
		return resp
	}
	resp.Body = string(data)

	if resp.StatusCode >= 400 {
		resp.Error = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return resp
}
