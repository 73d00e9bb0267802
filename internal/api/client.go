// Package api is the HTTP client for the platform backend.
//
// All JSON endpoints wrap their payload in a response envelope
// {"success": bool, "data": ..., "message": ...}; Client unwraps the
// envelope and hands callers only the data. The package-download endpoint
// is binary and bypasses envelope handling entirely.
//
// Base URL resolution order:
//  1. --api-url flag
//  2. DPCLI_API_URL env var
//  3. api.url in ~/.dpcli/config.yaml
//  4. Default: http://localhost:8080/api
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultTimeout applies to every JSON call.
	DefaultTimeout = 30 * time.Second
	// DefaultDownloadTimeout applies only to package downloads, which can
	// be hundreds of megabytes for airgapped bundles.
	DefaultDownloadTimeout = 300 * time.Second

	defaultErrorMessage = "server error occurred"
)

// Config configures a Client. The zero value of every field has a usable
// default except BaseURL.
type Config struct {
	BaseURL         string
	Token           string
	Timeout         time.Duration
	DownloadTimeout time.Duration

	// HTTPClient overrides the transport. Tests inject one backed by
	// httptest; when nil a plain client with Timeout is used.
	HTTPClient *http.Client
}

// Client is the single point of HTTP configuration. Resource methods are
// defined across the other files of this package, one file per backend
// resource.
type Client struct {
	baseURL         string
	token           string
	http            *http.Client
	downloadTimeout time.Duration
}

// APIError is a normalized non-2xx response. Message comes from the error
// envelope's "message" field when present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is an APIError with HTTP 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// New builds a Client from cfg.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	dlTimeout := cfg.DownloadTimeout
	if dlTimeout <= 0 {
		dlTimeout = DefaultDownloadTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		token:           cfg.Token,
		http:            httpClient,
		downloadTimeout: dlTimeout,
	}
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// envelope is the transport-level wrapper around every JSON payload.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Page is the list envelope returned by paginated endpoints.
type Page[T any] struct {
	Content       []T `json:"content"`
	TotalPages    int `json:"totalPages"`
	TotalElements int `json:"totalElements"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// do issues one JSON request and unwraps the response envelope into out.
// out may be nil for operations with no interesting payload.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	full := c.baseURL + path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, full, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s: %w", full, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return normalizeError(resp)
	}
	if out == nil {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", full, err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decoding response from %s: %w", full, err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding payload from %s: %w", full, err)
	}
	return nil
}

// Download fetches a binary payload. The response body is returned as-is —
// it must never go through JSON unwrapping — and errors carry only the HTTP
// status because the error body of a binary endpoint may not be JSON.
func (c *Client) Download(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	full := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s: %w", full, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &APIError{Status: resp.StatusCode, Message: defaultErrorMessage}
	}
	return io.ReadAll(resp.Body)
}

// normalizeError extracts a human-readable message from the error envelope,
// falling back to a generic message when the body is unusable.
func normalizeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := defaultErrorMessage
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && strings.TrimSpace(env.Message) != "" {
		msg = strings.TrimSpace(env.Message)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

// decodeList decodes a data payload that is either a bare JSON array of T or
// a Page envelope around T.
func decodeList[T any](data []byte) ([]T, int, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, 0, err
		}
		return items, 1, nil
	}
	var page Page[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, 0, err
	}
	return page.Content, page.TotalPages, nil
}
