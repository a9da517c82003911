// Package submit sends decoded codes to the ingestion server, suppressing
// repeats within a cooldown window.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"wareeye/internal/parse"
)

// Scope selects what the cooldown is keyed on.
type Scope string

const (
	// ScopeText applies the cooldown per decoded string.
	ScopeText Scope = "text"
	// ScopeGlobal applies one cooldown to every submission.
	ScopeGlobal Scope = "global"
)

const globalKey = "*"

// Client posts scans for one camera.
type Client struct {
	endpoint string
	info     parse.CameraInfo
	http     *http.Client
	registry *Registry
	scope    Scope
	now      func() time.Time
	logger   *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRegistry shares a registry between clients.
func WithRegistry(r *Registry) Option {
	return func(c *Client) { c.registry = r }
}

// WithScope sets the cooldown scope.
func WithScope(s Scope) Option {
	return func(c *Client) { c.scope = s }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithLogger sets the logger for swallowed failures.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client posting to <serverURL>/api/scan on behalf of the
// camera described by info.
func NewClient(serverURL string, info parse.CameraInfo, cooldown, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimRight(serverURL, "/") + "/api/scan",
		info:     info,
		http:     &http.Client{Timeout: timeout},
		scope:    ScopeText,
		now:      time.Now,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = NewRegistry(cooldown)
	}
	return c
}

type scanPayload struct {
	Barcode    string `json:"barcode"`
	CameraName string `json:"camera_name"`
	Area       string `json:"area"`
	CameraType string `json:"camera_type"`
	ClientIP   string `json:"client_ip"`
	CameraURL  string `json:"camera_url"`
	Timestamp  string `json:"timestamp"`
}

type scanResponse struct {
	Valid *bool `json:"valid"`
}

// Submit sends text unless it is empty or still cooling down. It returns the
// server's verdict, or nil when there is none.
func (c *Client) Submit(text string) *bool {
	return c.SubmitContext(context.Background(), text)
}

// SubmitContext is Submit with a caller context bounding the request.
func (c *Client) SubmitContext(ctx context.Context, text string) *bool {
	if text == "" {
		return nil
	}
	now := c.now()
	key := text
	if c.scope == ScopeGlobal {
		key = globalKey
	}
	if !c.registry.Reserve(key, now) {
		return nil
	}

	valid, err := c.post(ctx, text, now)
	if err != nil {
		c.logger.Printf("Failed to send barcode %q: %v", text, err)
		return nil
	}
	return valid
}

func (c *Client) post(ctx context.Context, text string, now time.Time) (*bool, error) {
	body, err := json.Marshal(scanPayload{
		Barcode:    text,
		CameraName: c.info.Name,
		Area:       c.info.Area,
		CameraType: c.info.Type,
		ClientIP:   c.info.ClientIP,
		CameraURL:  c.info.URL,
		Timestamp:  now.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("received status code %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	var out scanResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return out.Valid, nil
}
