package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vytor/likescenter/internal/logger"
	"github.com/vytor/likescenter/internal/models"
	"golang.org/x/time/rate"
)

// Client is the HTTP JSON implementation of Source.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRateLimit paces outgoing requests. A non-positive rate disables pacing.
func WithRateLimit(perSec float64) ClientOption {
	return func(c *Client) {
		if perSec <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
	}
}

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) FetchPage(ctx context.Context, limit int, cursor *string) (models.Page, error) {
	log := logger.FromContext(ctx).WithPrefix("remote").WithField("limit", limit)

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if cursor != nil {
		q.Set("cursor", *cursor)
		log = log.WithField("cursor", *cursor)
	}

	var page models.Page
	if err := c.do(ctx, log, http.MethodGet, "/likes?"+q.Encode(), nil, &page); err != nil {
		return models.Page{}, err
	}

	log.Info("fetched %d likes, has_more=%t", len(page.Items), page.NextCursor != nil)
	return page, nil
}

func (c *Client) FetchFeatureFlag(ctx context.Context) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("remote")

	var payload struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.do(ctx, log, http.MethodGet, "/flags/blur", nil, &payload); err != nil {
		return false, err
	}
	return payload.Enabled, nil
}

func (c *Client) PerformAction(ctx context.Context, id string, action models.Action) error {
	log := logger.FromContext(ctx).WithPrefix("remote").WithFields(map[string]any{"user_id": id, "action": action})

	body, err := json.Marshal(map[string]models.Action{"action": action})
	if err != nil {
		return err
	}
	if err := c.do(ctx, log, http.MethodPost, "/users/"+url.PathEscape(id)+"/actions", body, nil); err != nil {
		return err
	}

	log.Info("action accepted")
	return nil
}

// do performs one request and decodes a JSON response into out when out is
// non-nil.
func (c *Client) do(ctx context.Context, log *logger.Logger, method, path string, body []byte, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			log.Warn("rate limiter wait aborted: %v", err)
			return err
		}
	}

	target := c.baseURL + path
	log.Debug("%s %s", method, target)
	start := time.Now()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("request failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	log.Debug("response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("request failed: status=%d, body=%s", resp.StatusCode, string(msg))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("failed to decode response: %v", err)
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
