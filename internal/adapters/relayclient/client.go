package relayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bnema/revisionai/internal/domain"
	"github.com/tidwall/gjson"
)

const (
	DefaultURL = "http://127.0.0.1:8787/api/chat"

	closeEventType = "close"
	maxErrorBytes  = 1 << 20
)

var ErrStreamTruncated = errors.New("relay stream ended before close event")

// Error is a JSON error document returned by the relay.
type Error struct {
	Status  int
	Message string
	Detail  string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("relay returned %d: %s (%s)", e.Status, e.Message, e.Detail)
	}
	return fmt.Sprintf("relay returned %d: %s", e.Status, e.Message)
}

// StreamError is an error event relayed from the upstream stream itself.
type StreamError struct {
	Type    string
	Message string
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("upstream stream %s: %s", e.Type, e.Message)
}

type Client struct {
	URL        string
	HTTPClient *http.Client
}

func NewClient(url string, httpClient *http.Client) *Client {
	return &Client{URL: url, HTTPClient: httpClient}
}

// Stream posts request to the relay and calls onDelta with every text
// fragment as it arrives. It returns the assembled reply once the relay
// sends its close event.
func (c *Client) Stream(ctx context.Context, request domain.ChatRequest, onDelta func(string)) (string, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("post relay request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", decodeError(resp)
	}

	var reply strings.Builder
	scanner := newEventScanner(resp.Body)
	for scanner.Next() {
		ev := scanner.Event()
		if ev.Type == closeEventType {
			return reply.String(), nil
		}

		delta, err := parseLine(ev.Data)
		if err != nil {
			return reply.String(), err
		}
		if delta == "" {
			continue
		}

		reply.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}

	if err := scanner.Err(); err != nil {
		return reply.String(), fmt.Errorf("read relay stream: %w", err)
	}
	return reply.String(), ErrStreamTruncated
}

// parseLine extracts the text delta from one upstream line. The line may
// still carry the upstream's own "data:" framing. Lines that carry no text,
// or are not JSON, yield "".
func parseLine(data string) (string, error) {
	data = strings.TrimSpace(data)
	if rest, ok := strings.CutPrefix(data, "data:"); ok {
		data = strings.TrimSpace(rest)
	}
	if !gjson.Valid(data) {
		return "", nil
	}

	line := gjson.Parse(data)
	switch kind := line.Get("type").String(); kind {
	case "response.output_text.delta":
		return line.Get("delta").String(), nil
	case "error", "response.failed":
		return "", &StreamError{Type: kind, Message: firstString(line,
			"error.message",
			"message",
			"response.error.message",
		)}
	}

	if content := line.Get("choices.0.delta.content"); content.Exists() {
		return content.String(), nil
	}
	if message := line.Get("error.message"); message.Exists() {
		return "", &StreamError{Type: "error", Message: message.String()}
	}

	return "", nil
}

func firstString(doc gjson.Result, paths ...string) string {
	for _, path := range paths {
		if value := doc.Get(path); value.Exists() && value.String() != "" {
			return value.String()
		}
	}
	return "unknown error"
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
	relayErr := &Error{Status: resp.StatusCode}

	if gjson.ValidBytes(data) {
		doc := gjson.ParseBytes(data)
		relayErr.Message = doc.Get("error").String()
		relayErr.Detail = doc.Get("detail").String()
	}
	if relayErr.Message == "" {
		relayErr.Message = strings.TrimSpace(string(data))
	}
	if relayErr.Message == "" {
		relayErr.Message = http.StatusText(resp.StatusCode)
	}

	return relayErr
}

func (c *Client) url() string {
	if strings.TrimSpace(c.URL) == "" {
		return DefaultURL
	}
	return c.URL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
