// Package httprt dispatches HTTP IO calls issued by the IR evaluator
// against a rendered template.Rendered using a plain net/http client.
package httprt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tailcallhq/tailcall-go/internal/dynval"
	"github.com/tailcallhq/tailcall-go/internal/runtime"
	"github.com/tailcallhq/tailcall-go/internal/template"
)

// Client implements internal/runtime.Client for OpHTTP IO nodes.
type Client struct {
	http *http.Client
}

var _ runtime.Client = (*Client)(nil)

// NewClient wraps hc. A nil hc falls back to http.DefaultClient.
func NewClient(hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{http: hc}
}

func (c *Client) Do(ctx context.Context, rendered template.Rendered) (dynval.Value, error) {
	var body io.Reader
	if !rendered.Body.IsNull() {
		encoded, err := json.Marshal(rendered.Body.ToAny())
		if err != nil {
			return dynval.Null, fmt.Errorf("httprt: encode body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	reqURL, err := buildURL(rendered.URL, rendered.Query)
	if err != nil {
		return dynval.Null, fmt.Errorf("httprt: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, string(rendered.Method), reqURL, body)
	if err != nil {
		return dynval.Null, fmt.Errorf("httprt: build request: %w", err)
	}
	for _, h := range rendered.Headers {
		req.Header.Add(h.Key, h.Value)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return dynval.Null, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return dynval.Null, fmt.Errorf("httprt: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return dynval.Null, &runtime.StatusError{Code: resp.StatusCode, Message: string(raw)}
	}

	if len(raw) == 0 {
		return dynval.Null, nil
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return dynval.String(string(raw)), nil
	}
	return dynval.FromAny(decoded), nil
}

func buildURL(base string, query []template.KV) (string, error) {
	if len(query) == 0 {
		return base, nil
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", base, err)
	}
	q := u.Query()
	for _, kv := range query {
		q.Add(kv.Key, kv.Value)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
