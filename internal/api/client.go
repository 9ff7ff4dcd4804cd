// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Client configuration constants.
const (
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of attempts for transient errors.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay caps the backoff delay.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize bounds response bodies read into memory.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	// requestsPerSecond is the client-side rate limit toward the backend.
	requestsPerSecond = 10
)

// sharedHTTPClient pools connections across all backend requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	Timeout: DefaultTimeout,
}

// Sentinel errors for common backend failures.
var (
	// ErrInvalidCredentials indicates a rejected username/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized indicates a missing, expired or revoked token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated role lacks the permission.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited indicates the backend throttled the client.
	ErrRateLimited = errors.New("rate limited")
)

// APIError is a structured error payload from the backend.
type APIError struct {
	Status int
	Detail string
	Fields map[string]string // field-level validation errors, if any
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend error (HTTP %d)", e.Status)
}

// errorResponse is the backend's error body shape.
type errorResponse struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Client talks to the parcbudget backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	userAgent  string

	mu    sync.RWMutex
	token string
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: sharedHTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		maxRetries: DefaultMaxRetries,
		userAgent:  "parcbudget/0.1.0",
	}
}

// WithHTTPClient overrides the HTTP client, used by tests against httptest
// servers.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithMaxRetries sets the number of attempts for transient errors.
func (c *Client) WithMaxRetries(n int) *Client {
	c.maxRetries = n
	return c
}

// WithTimeout overrides the per-request timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d <= 0 {
		return c
	}
	hc := *c.httpClient
	hc.Timeout = d
	c.httpClient = &hc
	return c
}

// WithInsecureTLS disables certificate verification. Development backends
// with self-signed certificates only; the toggle is off unless the config
// file asks for it.
func (c *Client) WithInsecureTLS() *Client {
	c.httpClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion:         tls.VersionTLS12,
				InsecureSkipVerify: true,
			},
		},
		Timeout: c.httpClient.Timeout,
	}
	return c
}

// SetToken installs the bearer credential used for subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = strings.TrimSpace(token)
	c.mu.Unlock()
}

// ClearToken removes the bearer credential.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the currently installed bearer credential.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// TokenFingerprint returns a short SHA-256 fingerprint of the token for
// logs. The token itself never appears in log output.
func (c *Client) TokenFingerprint() string {
	tok := c.Token()
	if tok == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(h[:4])
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// do performs a JSON request with rate limiting and retry on transient
// failures, decoding a successful response into out (which may be nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	attempts := c.maxRetries
	if attempts < 1 {
		attempts = 1 // always at least one round trip
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoffDelay(attempt)):
			}
		}

		err := c.doOnce(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// doOnce performs a single HTTP round trip.
func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)

	// Drop the Authorization header from the request object once sent so
	// it cannot leak through error values or logs.
	req.Header.Del("Authorization")

	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	log.Printf("API %s %s -> %d (%v)", method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	data, err := readBody(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// setHeaders installs the standard headers for a backend request.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", uuid.NewString())

	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
}

// readBody reads a response body with a hard size cap.
func readBody(resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(data)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return data, nil
}

// mapError converts an HTTP error status plus body into a Go error. The
// backend's detail text is preserved verbatim: forms display it as-is.
func mapError(status int, body []byte) error {
	apiErr := &APIError{Status: status}
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Detail != "" {
		apiErr.Detail = parsed.Detail
		apiErr.Fields = parsed.Fields
	} else if len(body) > 0 {
		apiErr.Detail = strings.TrimSpace(string(body))
	}

	switch status {
	case http.StatusUnauthorized:
		if apiErr.Detail != "" {
			return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Detail)
		}
		return ErrUnauthorized
	case http.StatusForbidden:
		if apiErr.Detail != "" {
			return fmt.Errorf("%w: %s", ErrForbidden, apiErr.Detail)
		}
		return ErrForbidden
	case http.StatusNotFound:
		if apiErr.Detail != "" {
			return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Detail)
		}
		return ErrNotFound
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Detail)
	default:
		return apiErr
	}
}

// isRetryable reports whether the error is worth another attempt.
func isRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 && apiErr.Status < 600
	}
	return false
}

// backoffDelay returns the exponential backoff delay for the attempt.
func backoffDelay(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
