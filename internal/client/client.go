// Package client talks to the query-api over HTTP. Every failure at this
// boundary, network, status or decode, is reported as *RequestFailed.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestFailed carries the backend error body verbatim when there is one.
// Message is the raw body text, trailing newline included.
type RequestFailed struct {
	Method  string
	Path    string
	Status  int
	Message string
	Err     error
}

func (e *RequestFailed) Error() string { return e.Message }
func (e *RequestFailed) Unwrap() error { return e.Err }

type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchJSON issues a GET for path and decodes the payload into out.
func (c *Client) FetchJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, out)
}

// Patch issues the state-changing request for path and decodes the reply.
func (c *Client) Patch(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodPatch, path, out)
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	fail := func(status int, msg string, err error) error {
		return &RequestFailed{Method: method, Path: path, Status: status, Message: msg, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fail(0, fmt.Sprintf("create request: %v", err), err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("request error")
		return fail(0, fmt.Sprintf("request %s: %v", path, err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		msg := string(body)
		if strings.TrimSpace(msg) == "" {
			msg = fmt.Sprintf("request failed (%d)", resp.StatusCode)
		}
		c.logger.Debug().Int("status", resp.StatusCode).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("request rejected")
		return fail(resp.StatusCode, msg, nil)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, fmt.Sprintf("read %s: %v", path, err), err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fail(resp.StatusCode, fmt.Sprintf("decode %s: %v", path, err), err)
	}
	return nil
}
