// Package client implements the storefront's REST/JSON API client. Every
// response body passes through a validating decode so a payload that violates
// the schema is rejected with shop.ErrBadResponse instead of leaking into
// cart state. The client never retries: a retry is always a fresh
// user-initiated action.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/example/storefront/internal/shop"
)

const idempotencyKeyHeader = "Idempotency-Key"

// errorEnvelope is the wire shape of every non-2xx response.
type errorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Client talks to the commerce API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	creds      CredentialProvider
	httpClient *http.Client
}

// New creates a Client for the API at baseURL. httpClient may be nil, in
// which case a default client with a 30s timeout is used. A nil creds sends
// unauthenticated requests.
func New(baseURL string, creds CredentialProvider, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		creds:      creds,
		httpClient: httpClient,
	}
}

// do executes one request-response cycle and decodes the result into out.
// A non-empty idempotencyKey is sent as the Idempotency-Key header.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, idempotencyKey string, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set(idempotencyKeyHeader, idempotencyKey)
	}
	if c.creds != nil {
		token, err := c.creds.Token(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", shop.ErrUnauthorized, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shop.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", shop.ErrBadResponse, err)
	}
	return nil
}

// decodeError maps the error envelope onto the typed taxonomy. The code
// field decides; the HTTP status is the fallback for servers that omit it.
func decodeError(resp *http.Response) error {
	var env errorEnvelope
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &env); err != nil || env.Error == "" {
		return fmt.Errorf("%w: status %d with undecodable error body", shop.ErrBadResponse, resp.StatusCode)
	}

	sentinel := sentinelForCode(env.Code)
	if sentinel == nil {
		sentinel = sentinelForStatus(resp.StatusCode)
	}
	return fmt.Errorf("%w: %s", sentinel, env.Error)
}

func sentinelForCode(code string) error {
	switch code {
	case "not_found":
		return shop.ErrNotFound
	case "validation", "invalid_action":
		return shop.ErrValidation
	case "stock_exceeded":
		return shop.ErrStockExceeded
	case "empty_cart":
		return shop.ErrEmptyCart
	case "unauthorized":
		return shop.ErrUnauthorized
	}
	return nil
}

func sentinelForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return shop.ErrUnauthorized
	case status == http.StatusNotFound:
		return shop.ErrNotFound
	case status >= 500:
		return shop.ErrNetwork
	default:
		return shop.ErrValidation
	}
}
