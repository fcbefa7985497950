package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrAuthExpired is returned when the upstream API rejects the bearer
// credential. The registered auth-expiry handler has already been notified
// by the time a caller sees this error.
var ErrAuthExpired = fmt.Errorf("authentication expired")

type tokenContextKey struct{}

// WithBearerToken returns a context carrying the bearer credential to be
// forwarded on upstream requests.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// BearerTokenFromContext extracts the bearer credential, if any.
func BearerTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey{}).(string)
	return token
}

// UpstreamClient is the shared HTTP transport for the marketplace API.
// A 401 from any call invokes the auth-expiry handler instead of performing
// navigation itself; the application shell decides what expiry means.
type UpstreamClient struct {
	baseURL     string
	httpClient  *http.Client
	authExpired func()
}

// NewUpstreamClient creates a client for the given API origin.
func NewUpstreamClient(baseURL string) *UpstreamClient {
	return &UpstreamClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// OnAuthExpired registers the handler invoked when upstream returns 401.
func (c *UpstreamClient) OnAuthExpired(fn func()) {
	c.authExpired = fn
}

// errorResponse is the upstream API's error body shape.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// doJSON issues a request with an optional JSON body and decodes a JSON
// response into out. Extra headers are set verbatim.
func (c *UpstreamClient) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}, headers map[string]string) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := BearerTokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.authExpired != nil {
			c.authExpired()
		}
		return fmt.Errorf("%s: %w", path, ErrAuthExpired)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Message != "" {
			return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("%s returned %d", path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	}
	return nil
}

// postJSON is doJSON for POST requests.
func (c *UpstreamClient) postJSON(ctx context.Context, path string, body interface{}, out interface{}, headers map[string]string) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out, headers)
}

// getJSON is doJSON for GET requests.
func (c *UpstreamClient) getJSON(ctx context.Context, path string, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out, nil)
}
