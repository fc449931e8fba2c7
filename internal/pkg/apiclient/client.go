// Package apiclient builds per-group clients for the campus REST API. Every
// client sends the visitor's access cookie and routes responses through an
// interceptor that reacts to 401s: it evicts the cached profile and, when
// the redirect policy says so, sends the browser to the login page.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/techsupport-hub/portal/internal/pkg/access"
	"github.com/techsupport-hub/portal/internal/pkg/observability/metrics"
	"github.com/techsupport-hub/portal/internal/pkg/profilestore"
)

// Group is one logical API area.
type Group string

const (
	GroupAuth          Group = "auth"
	GroupUsers         Group = "users"
	GroupTasks         Group = "tasks"
	GroupBlogs         Group = "blogs"
	GroupGuides        Group = "guides"
	GroupEvents        Group = "events"
	GroupServices      Group = "services"
	GroupShifts        Group = "shifts"
	GroupStudents      Group = "students"
	GroupMembers       Group = "members"
	GroupMessages      Group = "messages"
	GroupNotifications Group = "notifications"
	GroupApplications  Group = "applications"
)

// DefaultExemptEndpoints are the session probe and login endpoints. A 401
// from these is the answer to "am I signed in?", not a lost session.
var DefaultExemptEndpoints = []string{"/auth/me", "/auth/login"}

// Browser is the page-side port: where the visitor is and how to send them
// somewhere else with a full navigation. Navigate must be idempotent.
type Browser interface {
	CurrentPath() string
	Navigate(target string)
}

// Env binds clients to one visitor.
type Env struct {
	Jar      http.CookieJar
	Browser  Browser
	Profiles *profilestore.Store
}

type Config struct {
	BaseURL         string
	CookieName      string
	Timeout         time.Duration
	ExemptEndpoints []string
}

// Factory creates clients that share base address, policy and transport.
type Factory struct {
	baseURL    *url.URL
	cookieName string
	timeout    time.Duration
	table      *access.Table
	exempt     map[string]struct{}
	transport  http.RoundTripper
	logger     *zap.Logger
}

// NewFactory validates cfg and returns a Factory.
func NewFactory(cfg Config, table *access.Table, logger *zap.Logger) (*Factory, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api base URL is required")
	}
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base URL %q", cfg.BaseURL)
	}
	if table == nil {
		table = access.DefaultTable()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	exemptList := cfg.ExemptEndpoints
	if exemptList == nil {
		exemptList = DefaultExemptEndpoints
	}
	exempt := make(map[string]struct{}, len(exemptList))
	for _, e := range exemptList {
		exempt[cleanEndpoint(e)] = struct{}{}
	}

	return &Factory{
		baseURL:    u,
		cookieName: cfg.CookieName,
		timeout:    cfg.Timeout,
		table:      table,
		exempt:     exempt,
		transport:  otelhttp.NewTransport(http.DefaultTransport),
		logger:     logger,
	}, nil
}

// SetTransport replaces the underlying transport.
func (f *Factory) SetTransport(rt http.RoundTripper) {
	f.transport = rt
}

// BaseURL returns the API base address.
func (f *Factory) BaseURL() *url.URL {
	u := *f.baseURL
	return &u
}

// NewJar returns a cookie jar seeded with the visitor's access token, so
// every request carries the credential without callers touching it.
func (f *Factory) NewJar(token string) http.CookieJar {
	jar, _ := cookiejar.New(nil)
	if token != "" && f.cookieName != "" {
		jar.SetCookies(f.baseURL, []*http.Cookie{{Name: f.cookieName, Value: token, Path: "/"}})
	}
	return jar
}

// Client returns a client for group bound to env.
func (f *Factory) Client(group Group, env Env) *Client {
	if env.Jar == nil {
		env.Jar = f.NewJar("")
	}
	return &Client{
		group:   group,
		factory: f,
		env:     env,
		http: &http.Client{
			Timeout: f.timeout,
			Jar:     env.Jar,
			Transport: &interceptor{
				next:     f.transport,
				group:    group,
				basePath: f.baseURL.Path,
				table:    f.table,
				exempt:   f.exempt,
				env:      env,
				logger:   f.logger,
			},
		},
	}
}

// Client sends JSON requests to one API group.
type Client struct {
	group   Group
	factory *Factory
	env     Env
	http    *http.Client
}

// Credential returns the access cookie currently held for the API, if any.
// After a login this is the token the API just issued.
func (c *Client) Credential() (string, bool) {
	if c.factory.cookieName == "" || c.env.Jar == nil {
		return "", false
	}
	for _, ck := range c.env.Jar.Cookies(c.factory.baseURL) {
		if ck.Name == c.factory.cookieName && ck.Value != "" {
			return ck.Value, true
		}
	}
	return "", false
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do sends one request. path is relative to the group and may carry a query
// string. Non-2xx responses come back as *APIError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	endpoint := c.endpoint(path)
	target := c.factory.BaseURL()
	pathPart, rawQuery, _ := strings.Cut(endpoint, "?")
	target.Path = strings.TrimRight(target.Path, "/") + pathPart
	target.RawQuery = rawQuery

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	ctx = context.WithValue(ctx, endpointKey{}, pathPart)
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.Get().APIRequestDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(
			attribute.String("group", string(c.group)),
			attribute.String("method", method),
		))
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Status:   resp.StatusCode,
			Method:   method,
			Endpoint: pathPart,
			Message:  errorMessage(raw),
		}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := decodeBody(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) endpoint(path string) string {
	if path == "" || strings.HasPrefix(path, "?") {
		return "/" + string(c.group) + path
	}
	return "/" + string(c.group) + "/" + strings.TrimLeft(path, "/")
}

var envelopeKeys = map[string]bool{"data": true, "message": true, "success": true, "meta": true, "total": true}

// decodeBody accepts either a bare payload or one wrapped as
// {"data": ..., "message": ..., "meta": ...}.
func decodeBody(raw []byte, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err == nil && isEnvelope(envelope) {
			return json.Unmarshal(envelope["data"], out)
		}
	}
	return json.Unmarshal(trimmed, out)
}

func isEnvelope(m map[string]json.RawMessage) bool {
	if _, ok := m["data"]; !ok {
		return false
	}
	for k := range m {
		if !envelopeKeys[k] {
			return false
		}
	}
	return true
}

func cleanEndpoint(e string) string {
	e, _, _ = strings.Cut(e, "?")
	if !strings.HasPrefix(e, "/") {
		e = "/" + e
	}
	if len(e) > 1 {
		e = strings.TrimRight(e, "/")
	}
	return e
}
