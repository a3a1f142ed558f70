// pkg/client/client.go

// Package client talks to the cancellation flow endpoints and drives a
// wizard session against them.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cancelflow/pkg/jsonx"
	"cancelflow/pkg/wizard"
)

const (
	VariantPath = "/api/cancellation-flow-downsell-variant"
	StatePath   = "/api/cancellation-flow-state"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cancellation api: %d %s", e.Status, e.Message)
}

// NotFound reports whether the server had no subscription for the user.
func (e *APIError) NotFound() bool { return e.Status == http.StatusNotFound }

type VariantResponse struct {
	DownsellVariant wizard.Variant `json:"downsellVariant"`
	MonthlyPrice    int            `json:"monthlyPrice"`
}

type Client struct {
	baseURL string
	httpc   *http.Client
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.httpc = h } }

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// DownsellVariant fetches (and on first call assigns) the user's variant.
func (c *Client) DownsellVariant(ctx context.Context, userID string) (*VariantResponse, error) {
	q := url.Values{"userId": {userID}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+VariantPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var out VariantResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if !out.DownsellVariant.Valid() {
		return nil, fmt.Errorf("cancellation api: unexpected variant %q", out.DownsellVariant)
	}
	return &out, nil
}

// SaveState replaces the stored history of the user.
func (c *Client) SaveState(ctx context.Context, userID string, h wizard.History) error {
	body, err := jsonx.Marshal(struct {
		UserID string         `json:"userId"`
		State  wizard.History `json:"state"`
	}{userID, h})
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+StatePath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		if jsonx.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := jsonx.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
