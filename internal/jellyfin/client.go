// Package jellyfin is a small client for the parts of the Jellyfin API used
// to manage which libraries each user can see.
package jellyfin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tagrs/movietagger/internal/ratelimit"
)

const (
	// Outbound budget per server: 5 requests per second, burst of 10.
	defaultRPS   = 5.0
	defaultBurst = 10

	defaultTimeout = 30 * time.Second

	// maxBodySize caps how much of a response is read.
	maxBodySize = 10 << 20

	userAgent = "movietagger/1.0"
)

// HTTPDoer describes the HTTP client used by the Jellyfin client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a rate-limited Jellyfin API client.
type Client struct {
	baseURL string
	apiKey  string
	http    HTTPDoer
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// New creates a client for the server at baseURL. A trailing "/" is
// trimmed so that request paths can always start with one.
func New(baseURL, apiKey string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Client{
		baseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		http:    &http.Client{Timeout: defaultTimeout},
		limiter: ratelimit.New(defaultRPS, defaultBurst),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Users lists every account on the server.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	body, err := c.do(ctx, http.MethodGet, "/Users", nil)
	if err != nil {
		return nil, wrapError("users", "", err)
	}

	var users []User
	if err := decode(body, &users); err != nil {
		return nil, wrapError("users", "", err)
	}
	return users, nil
}

// MediaFolders lists the server's top-level libraries.
func (c *Client) MediaFolders(ctx context.Context) ([]MediaFolder, error) {
	body, err := c.do(ctx, http.MethodGet, "/Library/MediaFolders", nil)
	if err != nil {
		return nil, wrapError("mediaFolders", "", err)
	}

	var resp listResponse[MediaFolder]
	if err := decode(body, &resp); err != nil {
		return nil, wrapError("mediaFolders", "", err)
	}
	return resp.Items, nil
}

// SetUserMediaFolders restricts user to exactly folders. The user's whole
// policy is posted back with only the folder fields replaced.
func (c *Client) SetUserMediaFolders(ctx context.Context, user User, folders []string) error {
	path := "/Users/" + url.PathEscape(user.ID) + "/Policy"
	if _, err := c.do(ctx, http.MethodPost, path, user.Policy.withFolders(folders)); err != nil {
		return wrapError("setPolicy", user.ID, err)
	}
	c.logger.Info("updated jellyfin user folders",
		"user", user.Name,
		"user_id", user.ID,
		"folders", len(folders),
	)
	return nil
}

// do executes one request with rate limiting. path must begin with "/".
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}

	if err := c.limiter.Wait(ctx, c.baseURL); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf(`MediaBrowser Token="%s"`, c.apiKey))
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("jellyfin request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, statusError(resp.StatusCode, body)
	}
	return body, nil
}

// decode parses a JSON body, keeping numbers exact so policies round-trip.
func decode(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
