// Package api implements the HTTP client every other component talks
// through: URL building, JSON bodies, bearer-token injection, envelope
// decoding, and the error taxonomy (ErrNetwork, *HTTPError, *APIError).
//
// Each failed call emits exactly one user-visible notification here, at the
// transport boundary; callers handle the returned error without presenting
// it a second time.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/dnovikovs/recordkeeper/internal/logging"
)

// TokenSource supplies the current bearer token. An empty string means the
// Authorization header is omitted.
type TokenSource interface {
	Token() string
}

// Notifier is the toast surface failures are reported to.
type Notifier interface {
	Error(message string) string
	Warning(message string) string
}

// Client is the request surface consumed by session and record layers.
type Client interface {
	Get(ctx context.Context, endpoint string, params url.Values, out any) error
	Post(ctx context.Context, endpoint string, body any, out any) error
	Put(ctx context.Context, endpoint string, body any, out any) error
	Delete(ctx context.Context, endpoint string) error
	Ping(ctx context.Context) error
}

// HTTPClient talks to the record API. A single attempt per call; no retries,
// no client-side timeout beyond what the caller's context imposes.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	bus     Notifier
	log     logging.Logger
}

func New(baseURL string, bus Notifier, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{},
		bus:     bus,
		log:     log,
	}
}

// SetTokenSource wires the session layer in after construction. The session
// manager needs the client to exist first, so the dependency cannot be passed
// to New.
func (c *HTTPClient) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

func (c *HTTPClient) Get(ctx context.Context, endpoint string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, params, nil, out)
}

func (c *HTTPClient) Post(ctx context.Context, endpoint string, body any, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, nil, body, out)
}

func (c *HTTPClient) Put(ctx context.Context, endpoint string, body any, out any) error {
	return c.do(ctx, http.MethodPut, endpoint, nil, body, out)
}

func (c *HTTPClient) Delete(ctx context.Context, endpoint string) error {
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil, nil)
}

// Ping probes GET /health. It bypasses the toast policy: connectivity is
// checked in the background and its failures are not user-facing events.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint string, params url.Values, body, out any) error {
	target := c.baseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error(ctx, "request failed", "method", method, "endpoint", endpoint, "err", err)
		c.bus.Error("network request failed")
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Error(ctx, "reading response failed", "method", method, "endpoint", endpoint, "err", err)
		c.bus.Error("network request failed")
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := fmt.Sprintf("HTTP %d", resp.StatusCode)
		var env envelope
		if json.Unmarshal(data, &env) == nil && env.Message != "" {
			message = env.Message
		}
		c.log.Warn(ctx, "http error", "method", method, "endpoint", endpoint, "status", resp.StatusCode)
		c.bus.Error(message)
		return &HTTPError{Status: resp.StatusCode, Message: message}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.bus.Error("invalid server response")
		return fmt.Errorf("decode response: %w", err)
	}

	if env.Code != codeOK {
		c.log.Warn(ctx, "api error", "method", method, "endpoint", endpoint, "code", env.Code)
		c.bus.Warning(env.Message)
		return &APIError{Code: env.Code, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}
