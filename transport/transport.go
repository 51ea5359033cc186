// Package transport opens streaming message requests against a Letta agent
// server. Client performs the raw HTTP POST; Retrying wraps any Streamer
// with bounded exponential backoff on transient establishment failures.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Message is one wire-format conversation message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Payload is the JSON body of a stream request. Immutable once built.
type Payload struct {
	Messages     []Message `json:"messages"`
	StreamSteps  bool      `json:"stream_steps"`
	StreamTokens bool      `json:"stream_tokens"`
}

// Streamer opens a streaming request and returns a live byte stream.
// The caller owns the returned body and must close it on every exit path.
type Streamer interface {
	Open(ctx context.Context, p *Payload) (io.ReadCloser, error)
}

// Client opens streaming requests over HTTP.
type Client struct {
	baseURL    string
	agentID    string
	credential string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client. Mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a transport client for one agent.
func NewClient(baseURL, agentID, credential string, opts ...Option) (*Client, error) {
	if agentID == "" {
		return nil, ErrMissingAgentID
	}
	if credential == "" {
		return nil, ErrInvalidCredential
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		agentID:    agentID,
		credential: credential,
		// No overall timeout: agent streams are open-ended. Only the
		// establishment phase is bounded, by the retry policy around it.
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Open performs the streaming POST and returns the response body on HTTP 200.
func (c *Client) Open(ctx context.Context, p *Payload) (io.ReadCloser, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stream payload: %w", err)
	}

	url := fmt.Sprintf("%s/v1/agents/%s/messages/stream", c.baseURL, c.agentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("X-BARE-PASSWORD", "password "+c.credential)

	logger.DebugContext(ctx, "opening agent stream", "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ConnError{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, c.statusError(resp)
	}
	return resp.Body, nil
}

// statusError maps non-200 establishment responses to the error taxonomy.
func (c *Client) statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	message := strings.TrimSpace(string(raw))
	var errResp struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &errResp); err == nil {
		if errResp.Detail != "" {
			message = errResp.Detail
		} else if errResp.Message != "" {
			message = errResp.Message
		}
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &StatusError{
			StatusCode: resp.StatusCode,
			Message:    message,
			Err:        ErrInvalidCredential,
		}
	case http.StatusUnprocessableEntity:
		return &StatusError{
			StatusCode: resp.StatusCode,
			Message:    "request validation failed: " + message,
		}
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return &StatusError{
			StatusCode: resp.StatusCode,
			Message:    message,
			Retryable:  true,
		}
	default:
		return &StatusError{
			StatusCode: resp.StatusCode,
			Message:    message,
			Retryable:  resp.StatusCode >= 500,
		}
	}
}
