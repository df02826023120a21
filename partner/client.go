package partner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/simstudio/authclient/internal/requestid"
	"github.com/simstudio/authclient/tokens"
)

var (
	// ErrUnauthenticated is returned by AuthorizedFetch when no token pair is stored.
	ErrUnauthenticated = errors.New("partner session unauthenticated")
	// ErrRefreshFailed is returned by Refresh for any failed refresh.
	ErrRefreshFailed = errors.New("partner token refresh failed")
)

const (
	maxBodyBytes  = 1 << 20
	maxDrainBytes = 64 << 10

	// RequestIDHeader carries the correlation id.
	RequestIDHeader = requestid.Header
)

// Credentials are sent to the partner login endpoint.
type Credentials struct {
	Username string
	Password string
}

// Request is an authenticated partner API call. Body is held in memory so the single retry
// can resend it.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Client talks to the partner API.
type Client struct {
	cfg      Config
	http     *http.Client
	store    *tokens.Store
	logger   *slog.Logger
	observer Observer

	refreshGroup singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. Its Timeout is left untouched.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver registers an event observer.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// New returns a Client storing its session in store.
func New(cfg Config, store *tokens.Store, opts ...Option) (*Client, error) {
	cfg = withDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("partner client requires a token store")
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Store returns the token store backing the client.
func (c *Client) Store() *tokens.Store {
	return c.store
}

type tokenEnvelope struct {
	Data struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	} `json:"data"`
}

// BootstrapSession logs in to the partner API and stores the returned pair. Every failure is
// logged and reported to the observer, and nil is returned. A response with an access token
// but no refresh token yields a degraded pair.
func (c *Client) BootstrapSession(ctx context.Context, creds Credentials) *tokens.Pair {
	start := time.Now()
	status, env, err := c.postJSON(ctx, c.cfg.LoginPath, map[string]string{
		"username": creds.Username,
		"password": creds.Password,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "partner: session bootstrap failed", slog.Int("status", status), slog.Any("error", err))
		c.emit(Event{Kind: EventBootstrapFailure, Status: status, Duration: time.Since(start), Err: err})
		return nil
	}

	pair := tokens.Pair{AccessToken: env.Data.AccessToken, RefreshToken: env.Data.RefreshToken}
	if !pair.Valid() {
		err := errors.New("login response missing access_token")
		c.logger.WarnContext(ctx, "partner: session bootstrap failed", slog.Int("status", status), slog.Any("error", err))
		c.emit(Event{Kind: EventBootstrapFailure, Status: status, Duration: time.Since(start), Err: err})
		return nil
	}
	if err := c.store.Save(ctx, pair); err != nil {
		c.logger.WarnContext(ctx, "partner: persist session", slog.Any("error", err))
		c.emit(Event{Kind: EventBootstrapFailure, Status: status, Duration: time.Since(start), Err: err})
		return nil
	}

	kind := EventBootstrapSuccess
	if !pair.CanRefresh() {
		kind = EventBootstrapDegraded
		c.logger.InfoContext(ctx, "partner: session bootstrapped without refresh token")
	}
	exp := c.logExpiry(ctx, "partner: session bootstrapped", pair)
	c.emit(Event{Kind: kind, Status: status, Duration: time.Since(start), AccessExpiresAt: exp})
	return &pair
}

// Refresh exchanges refreshToken for a new pair. Any non-2xx status, transport error or
// response missing either token returns an error wrapping ErrRefreshFailed.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (tokens.Pair, error) {
	if refreshToken == "" {
		return tokens.Pair{}, fmt.Errorf("%w: no refresh token", ErrRefreshFailed)
	}
	status, env, err := c.postJSON(ctx, c.cfg.RefreshPath, map[string]string{
		"refresh_token": refreshToken,
	})
	if err != nil {
		return tokens.Pair{}, fmt.Errorf("%w: status %d: %v", ErrRefreshFailed, status, err)
	}
	pair := tokens.Pair{AccessToken: env.Data.AccessToken, RefreshToken: env.Data.RefreshToken}
	if !pair.CanRefresh() {
		return tokens.Pair{}, fmt.Errorf("%w: response missing tokens", ErrRefreshFailed)
	}
	return pair, nil
}

// AuthorizedFetch sends req with the stored access token. On 401 it refreshes at most once
// and retries at most once. If the refresh fails the stored pair is cleared and the original
// 401 response is returned. The caller owns the returned body.
func (c *Client) AuthorizedFetch(ctx context.Context, req Request) (*http.Response, error) {
	pair, ok := c.store.Load(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	resp, err := c.send(ctx, req, pair.AccessToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || !pair.CanRefresh() {
		return resp, nil
	}

	next, err := c.rotate(ctx, pair)
	if err != nil && ctx.Err() != nil {
		// A cancelled caller leaves the stored pair untouched.
		drain(resp)
		return nil, ctx.Err()
	}
	if err != nil {
		c.logger.WarnContext(ctx, "partner: refresh failed, session cleared", slog.Any("error", err))
		if clearErr := c.store.Clear(ctx); clearErr != nil {
			c.logger.WarnContext(ctx, "partner: clear session", slog.Any("error", clearErr))
		}
		c.emit(Event{Kind: EventSessionExpired, Status: resp.StatusCode, Err: err})
		return resp, nil
	}

	drain(resp)
	c.emit(Event{Kind: EventRetry})
	return c.send(ctx, req, next.AccessToken)
}

// rotate returns the pair to retry with. If another caller already replaced the stale pair
// the stored pair is used without a network call; otherwise concurrent refreshes of the same
// token share one call. The shared call is detached from any single caller's cancellation and
// bounded by the configured timeout; each caller still stops waiting when its own ctx ends.
func (c *Client) rotate(ctx context.Context, stale tokens.Pair) (tokens.Pair, error) {
	if current, ok := c.store.Load(ctx); ok && current.AccessToken != stale.AccessToken {
		return current, nil
	}

	ch := c.refreshGroup.DoChan(stale.RefreshToken, func() (interface{}, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.Timeout)
		defer cancel()

		start := time.Now()
		next, err := c.Refresh(rctx, stale.RefreshToken)
		if err != nil {
			c.emit(Event{Kind: EventRefreshFailure, Duration: time.Since(start), Err: err})
			return nil, err
		}
		if err := c.store.Save(rctx, next); err != nil {
			err = fmt.Errorf("%w: persist: %v", ErrRefreshFailed, err)
			c.emit(Event{Kind: EventRefreshFailure, Duration: time.Since(start), Err: err})
			return nil, err
		}
		exp := c.logExpiry(rctx, "partner: session refreshed", next)
		c.emit(Event{Kind: EventRefreshSuccess, Duration: time.Since(start), AccessExpiresAt: exp})
		return next, nil
	})

	select {
	case <-ctx.Done():
		return tokens.Pair{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return tokens.Pair{}, res.Err
		}
		return res.Val.(tokens.Pair), nil
	}
}

// logExpiry logs a stored pair with its unverified access expiry. The zero time is returned
// for opaque tokens.
func (c *Client) logExpiry(ctx context.Context, msg string, p tokens.Pair) time.Time {
	exp, ok := p.AccessExpiry()
	if !ok {
		c.logger.DebugContext(ctx, msg, slog.Bool("refreshable", p.CanRefresh()))
		return time.Time{}
	}
	c.logger.DebugContext(ctx, msg,
		slog.Bool("refreshable", p.CanRefresh()),
		slog.Time("access_expires_at", exp),
	)
	return exp
}

func (c *Client) send(ctx context.Context, req Request, access string) (*http.Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.url(req.Path), body)
	if err != nil {
		return nil, fmt.Errorf("build partner request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	c.decorate(httpReq)
	httpReq.Header.Set("Authorization", "Bearer "+access)
	return c.http.Do(httpReq)
}

// postJSON posts payload and decodes a token envelope from a 2xx response. status is 0 when
// no response was received.
func (c *Client) postJSON(ctx context.Context, path string, payload any) (int, tokenEnvelope, error) {
	var env tokenEnvelope
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, env, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(data))
	if err != nil {
		return 0, env, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, env, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
		return resp.StatusCode, env, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&env); err != nil {
		return resp.StatusCode, env, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, env, nil
}

// decorate sets the request id from the request context, falling back to a fresh one.
func (c *Client) decorate(req *http.Request) {
	if req.Header.Get(RequestIDHeader) == "" {
		id := requestid.From(req.Context())
		if id == "" {
			id = uuid.NewString()
		}
		req.Header.Set(RequestIDHeader, id)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) emit(e Event) {
	if c.observer != nil {
		c.observer(e)
	}
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	_ = resp.Body.Close()
}
