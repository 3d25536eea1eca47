package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bnema/revisionai/internal/ports"
)

const DefaultEndpoint = "https://api.openai.com/v1/responses"

// Client posts streamed completion requests to an OpenAI-compatible
// Responses endpoint.
type Client struct {
	Endpoint   string
	HTTPClient *http.Client
}

var _ ports.Upstream = (*Client)(nil)

func NewClient(endpoint string, httpClient *http.Client) *Client {
	return &Client{Endpoint: endpoint, HTTPClient: httpClient}
}

func (c *Client) Open(ctx context.Context, payload []byte, credential string) (*ports.UpstreamResponse, error) {
	if credential == "" {
		return nil, errors.New("upstream credential is required")
	}

	endpoint, err := c.endpoint()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("post upstream request: %w", err)
	}

	response := &ports.UpstreamResponse{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       resp.Body,
	}
	if resp.ContentLength == 0 {
		_ = resp.Body.Close()
		response.Body = nil
	}

	return response, nil
}

func (c *Client) endpoint() (string, error) {
	raw := strings.TrimSpace(c.Endpoint)
	if raw == "" {
		raw = DefaultEndpoint
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse upstream endpoint: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("upstream endpoint must be http or https: %q", raw)
	}

	return parsed.String(), nil
}

// httpClient has no overall timeout; a streamed response is bounded by
// the request context instead.
func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
