package primary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/simstudio/authclient"
	"github.com/simstudio/authclient/internal/requestid"
	"github.com/simstudio/authclient/outcome"
)

const maxBodyBytes = 1 << 20

// ErrServer is wrapped for 5xx responses.
var ErrServer = errors.New("primary provider server error")

// Config describes the provider endpoint.
type Config struct {
	BaseURL string
	// Origin is sent as the Origin header; better-auth rejects cross-origin sign-ins without it.
	Origin    string
	Timeout   time.Duration
	UserAgent string
}

// Provider is an HTTP PrimaryProvider.
type Provider struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(p *Provider) {
		if hc != nil {
			p.http = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// New returns a Provider for cfg.
func New(cfg Config, opts ...Option) (*Provider, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("primary BaseURL must be an absolute URL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	p := &Provider{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

var _ authclient.PrimaryProvider = (*Provider)(nil)

type signInBody struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CallbackURL string `json:"callbackURL,omitempty"`
}

type signInResponse struct {
	User struct {
		ID string `json:"id"`
	} `json:"user"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SignIn implements authclient.PrimaryProvider.
func (p *Provider) SignIn(ctx context.Context, req authclient.SignInRequest) (authclient.SignInResult, error) {
	resp, err := p.post(ctx, "/sign-in/email", signInBody{
		Email:       req.Email,
		Password:    req.Password,
		CallbackURL: req.CallbackURL,
	})
	if err != nil {
		return authclient.SignInResult{}, err
	}
	defer resp.Body.Close()

	if pe, err := providerError(resp); err != nil || pe != nil {
		return authclient.SignInResult{Error: pe}, err
	}

	var out signInResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil && !errors.Is(err, io.EOF) {
		p.logger.DebugContext(ctx, "primary: sign-in body not decoded", slog.Any("error", err))
	}
	return authclient.SignInResult{UserID: out.User.ID}, nil
}

// SendVerificationOTP implements authclient.PrimaryProvider. Any rejection is returned as
// an error.
func (p *Provider) SendVerificationOTP(ctx context.Context, req authclient.VerificationRequest) error {
	resp, err := p.post(ctx, "/email-otp/send-verification-otp", map[string]string{
		"email": req.Email,
		"type":  req.Type,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	pe, err := providerError(resp)
	if err != nil {
		return err
	}
	if pe != nil {
		return *pe
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	return nil
}

func (p *Provider) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	id := requestid.From(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	req.Header.Set(requestid.Header, id)
	if p.cfg.Origin != "" {
		req.Header.Set("Origin", p.cfg.Origin)
	}
	if p.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", p.cfg.UserAgent)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("primary %s: %w", path, err)
	}
	return resp, nil
}

// providerError returns a ProviderError for 4xx responses and an error for 5xx. Both are
// nil for 2xx/3xx.
func providerError(resp *http.Response) (*outcome.ProviderError, error) {
	if resp.StatusCode < 400 {
		return nil, nil
	}
	var body errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	_ = json.Unmarshal(raw, &body)

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", ErrServer, resp.StatusCode)
	}
	if body.Message == "" && body.Code == "" {
		body.Message = http.StatusText(resp.StatusCode)
	}
	return &outcome.ProviderError{Status: resp.StatusCode, Code: body.Code, Message: body.Message}, nil
}
