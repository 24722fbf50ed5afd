// Package client is a typed HTTP client for the marketplace API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/plastmart/b2b/pkg/models"
)

const (
	DefaultBaseURL = "http://localhost:3002/api"
	DefaultTimeout = 10 * time.Second
)

type Config struct {
	// BaseURL is the API root including the /api prefix.
	BaseURL string
	// Timeout bounds every call unless overridden with WithTimeout.
	Timeout    time.Duration
	HTTPClient *http.Client
	// Token, when set, is sent as a bearer token.
	Token  string
	Logger *slog.Logger
}

type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	token   string
	logger  *slog.Logger

	Chat         *ChatService
	Bids         *BidService
	Jobs         *JobService
	Testimonials *ContentClient[models.Testimonial]
	Banners      *ContentClient[models.Banner]
	Sponsors     *ContentClient[models.Sponsor]
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		http:    cfg.HTTPClient,
		token:   cfg.Token,
		logger:  cfg.Logger,
	}
	c.Chat = &ChatService{c: c}
	c.Bids = &BidService{c: c}
	c.Jobs = &JobService{c: c}
	c.Testimonials = &ContentClient[models.Testimonial]{c: c, path: "/testimonials"}
	c.Banners = &ContentClient[models.Banner]{c: c, path: "/banners"}
	c.Sponsors = &ContentClient[models.Sponsor]{c: c, path: "/sponsors"}

	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is a non-2xx response. Message is the server's "error" field
// when present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type callOptions struct {
	timeout time.Duration
}

type CallOption func(*callOptions)

// WithTimeout overrides the client timeout for one call.
func WithTimeout(d time.Duration) CallOption {
	return func(o *callOptions) {
		o.timeout = d
	}
}

// do sends in as JSON (when non-nil) and decodes a 2xx body into out (when
// non-nil). Failed calls are never retried.
func (c *Client) do(ctx context.Context, method, path string, in, out any, opts ...CallOption) error {
	o := callOptions{timeout: c.timeout}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("api call failed", slog.String("method", method), slog.String("path", path), slog.String("error", err.Error()))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
