// Package llm provides the client for the remote language model backend.
package llm

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

	"github.com/rs/zerolog"
)

// Generation defaults. The backend applies the same values server-side, but
// sending them explicitly keeps the request self-describing.
const (
	DefaultMaxTokens   = 500
	DefaultTemperature = 0.7
)

// DefaultTimeout is deliberately generous: the backend scales to zero and a
// cold start can take well over a minute before the first token.
const DefaultTimeout = 3 * time.Minute

// Placeholder is returned when the backend answered 200 with a JSON body in
// none of the recognized envelope shapes. It is accompanied by a warning log
// so an unrecognized backend is distinguishable from a genuine empty reply.
const Placeholder = "No response generated"

// ErrUnavailable marks failures reaching or reading the backend: network
// errors, non-2xx statuses, timeouts and unparsable bodies.
var ErrUnavailable = errors.New("llm backend unavailable")

// Message is one entry in the prompt sent to the backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// GenerateRequest is the request body for one generation exchange.
// Non-positive MaxTokens and Temperature select the defaults, so a
// temperature of exactly 0 (greedy decoding) is not expressible; the
// backend's floor is DefaultTemperature.
type GenerateRequest struct {
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// Client performs exactly one request/response exchange with the backend.
type Client interface {
	Generate(ctx context.Context, req *GenerateRequest) (string, error)
}

// HTTPClient talks to the model endpoint over HTTP. It does not retry; retry
// policy, if any, belongs to the caller.
type HTTPClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the given endpoint. apiKey may be empty;
// when set it is attached as a bearer credential. A non-positive timeout
// falls back to DefaultTimeout.
func NewHTTPClient(endpoint, apiKey string, timeout time.Duration, logger zerolog.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With().Str("component", "llm").Logger(),
	}
}

// generateResponse covers the accepted envelope shapes. Pointer fields
// distinguish an absent field from a present-but-empty one.
type generateResponse struct {
	Choices []struct {
		Message *struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Response *string `json:"response"`
	Content  *string `json:"content"`
}

// text extracts the reply, trying the shapes in fixed priority order:
// OpenAI-style choices, then a flat response field, then a flat content field.
func (r *generateResponse) text() (string, bool) {
	if len(r.Choices) > 0 && r.Choices[0].Message != nil {
		return r.Choices[0].Message.Content, true
	}
	if r.Response != nil {
		return *r.Response, true
	}
	if r.Content != nil {
		return *r.Content, true
	}
	return "", false
}

// Generate sends the request and returns the extracted reply text.
func (c *HTTPClient) Generate(ctx context.Context, req *GenerateRequest) (string, error) {
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultMaxTokens
	}
	if req.Temperature <= 0 {
		req.Temperature = DefaultTemperature
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, truncate(string(respBody), 200))
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("%w: failed to unmarshal response: %v", ErrUnavailable, err)
	}

	text, ok := result.text()
	if !ok {
		c.logger.Warn().
			Str("body", truncate(string(respBody), 200)).
			Msg("unrecognized response envelope, returning placeholder")
		return Placeholder, nil
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
