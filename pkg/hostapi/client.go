package hostapi

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

	"github.com/google/uuid"
	"github.com/tendant/user-switcher/pkg/errors"
	"github.com/tendant/user-switcher/pkg/metrics"
)

// Host API paths, relative to the base URL
const (
	PathCurrentUser          = "Users/Me"
	PathUsers                = "Users"
	PathQuickConnectInitiate = "QuickConnect/Initiate"
	PathQuickConnectAuthz    = "QuickConnect/Authorize"
	PathQuickConnectRedeem   = "Users/AuthenticateWithQuickConnect"
)

// Client talks to the host media server API on behalf of an admin
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	metrics    *metrics.Metrics
}

// Option is a function that configures a Client
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for host calls. Its timeout is the
// only time limit applied to host requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithMetrics records host request latency
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a host API client rooted at baseURL
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid host base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid host base URL: %q", baseURL)
	}

	client := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// CurrentUser returns the user the credentials belong to
func (c *Client) CurrentUser(ctx context.Context, creds Credentials) (User, error) {
	var user User
	if err := c.do(ctx, creds, http.MethodGet, PathCurrentUser, nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// ListUsers returns every user known to the host
func (c *Client) ListUsers(ctx context.Context, creds Credentials) ([]User, error) {
	var users []User
	if err := c.do(ctx, creds, http.MethodGet, PathUsers, nil, &users); err != nil {
		return nil, err
	}
	if users == nil {
		return nil, errors.Newf(errors.ErrCodeUpstreamUnavailable, "host returned no user list for %s", PathUsers)
	}
	return users, nil
}

// InitiateQuickConnect starts a pairing session for a device
func (c *Client) InitiateQuickConnect(ctx context.Context, creds Credentials, req InitiateRequest) (QuickConnectResult, error) {
	var result QuickConnectResult
	if err := c.do(ctx, creds, http.MethodPost, PathQuickConnectInitiate, req, &result); err != nil {
		return QuickConnectResult{}, err
	}
	return result, nil
}

// AuthorizeQuickConnect approves a pairing code for userID
func (c *Client) AuthorizeQuickConnect(ctx context.Context, creds Credentials, code string, userID uuid.UUID) error {
	return c.do(ctx, creds, http.MethodPost, PathQuickConnectAuthz, authorizeRequest{Code: code, UserId: userID}, nil)
}

// AuthenticateWithQuickConnect redeems an authorized pairing secret for an access token
func (c *Client) AuthenticateWithQuickConnect(ctx context.Context, creds Credentials, secret string) (AuthenticationResult, error) {
	var result AuthenticationResult
	if err := c.do(ctx, creds, http.MethodPost, PathQuickConnectRedeem, authenticateRequest{Secret: secret}, &result); err != nil {
		return AuthenticationResult{}, err
	}
	return result, nil
}

// do sends one request and decodes a JSON response into out when out is non-nil.
// Error messages name the method and path only; request and response bodies
// may carry secrets and are never included.
func (c *Client) do(ctx context.Context, creds Credentials, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return errors.InternalWrap(err, "failed to encode host request")
		}
		body = bytes.NewReader(payload)
	}

	target := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return errors.InternalWrap(err, "failed to create host request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	creds.apply(req.Header)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveUpstream(path, started)
	if err != nil {
		slog.Error("Host request failed", "method", method, "path", path, "error", err)
		return errors.Wrapf(err, errors.ErrCodeUpstreamUnavailable, "host request %s %s failed", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		slog.Warn("Host rejected request", "method", method, "path", path, "status", resp.StatusCode)
		return errors.Newf(errors.ErrCodeUpstreamRejected, "host rejected %s %s with status %d %s",
			method, path, resp.StatusCode, http.StatusText(resp.StatusCode)).
			WithDetail("status", resp.StatusCode)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		slog.Error("Failed to decode host response", "method", method, "path", path, "error", err)
		return errors.Wrapf(err, errors.ErrCodeUpstreamUnavailable, "host returned malformed response for %s %s", method, path)
	}
	return nil
}

// StatusCode returns the host's HTTP status carried by a rejected request error, or 0
func StatusCode(err error) int {
	if status, ok := errors.GetDetails(err)["status"].(int); ok {
		return status
	}
	return 0
}
