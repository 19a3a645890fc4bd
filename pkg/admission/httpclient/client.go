package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vectorgate/pkg/admission"
)

// Client implements Gate against a remote admissiond server.
type Client struct {
	baseURL string
	client  *http.Client
}

// New constructs a client for the given base URL.
func New(baseURL string) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), client: &http.Client{}}
}

// NewWithTimeout constructs a client for the given base URL with a request timeout.
func NewWithTimeout(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Check requests an admission decision over HTTP. A 429 carries a regular
// rejection result, not an error.
func (c *Client) Check(ctx context.Context, tenantID, operation string) (admission.Result, error) {
	payload, err := json.Marshal(admission.CheckRequest{TenantID: tenantID, Operation: operation})
	if err != nil {
		return admission.Result{}, err
	}
	body, status, err := c.do(ctx, http.MethodPost, "/v1/check", payload)
	if err != nil {
		return admission.Result{}, err
	}
	if status != http.StatusOK && status != http.StatusTooManyRequests {
		return admission.Result{}, decodeHTTPError(status, body)
	}
	var res admission.Result
	if err := json.Unmarshal(body, &res); err != nil {
		return admission.Result{}, err
	}
	return res, nil
}

// GetUsage fetches a tenant usage snapshot over HTTP.
func (c *Client) GetUsage(ctx context.Context, tenantID string) (admission.UsageSnapshot, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/v1/usage/"+url.PathEscape(tenantID), nil)
	if err != nil {
		return admission.UsageSnapshot{}, err
	}
	if status != http.StatusOK {
		return admission.UsageSnapshot{}, decodeHTTPError(status, body)
	}
	var snap admission.UsageSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return admission.UsageSnapshot{}, err
	}
	return snap, nil
}

// Reset clears all counters for a tenant over HTTP.
func (c *Client) Reset(ctx context.Context, tenantID string) error {
	body, status, err := c.do(ctx, http.MethodPost, "/v1/admin/reset/"+url.PathEscape(tenantID), nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return decodeHTTPError(status, body)
	}
	return nil
}

// UpdateQuota upserts a tenant quota record over HTTP.
func (c *Client) UpdateQuota(ctx context.Context, quota admission.TenantQuota) error {
	payload, err := json.Marshal(quota)
	if err != nil {
		return err
	}
	body, status, err := c.do(ctx, http.MethodPut, "/v1/admin/quotas", payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return decodeHTTPError(status, body)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func decodeHTTPError(status int, body []byte) error {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != "" {
		return fmt.Errorf("http %d: %s", status, resp.Error)
	}
	return fmt.Errorf("http %d", status)
}
