package authclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	internalaudit "github.com/simstudio/authclient/internal/audit"
	"github.com/simstudio/authclient/internal/flows"
	"github.com/simstudio/authclient/internal/rate"
	"github.com/simstudio/authclient/outcome"
	"github.com/simstudio/authclient/partner"
	"github.com/simstudio/authclient/storage"
	"github.com/simstudio/authclient/validate"
)

// Client signs a user in with the primary provider while keeping a partner API session.
//
// Client is safe for concurrent use. Submissions are serialised: at most one Submit or
// SubmitEncrypted runs at a time.
type Client struct {
	config    Config
	primary   PrimaryProvider
	navigator Navigator
	durable   storage.Store
	session   storage.Store
	partner   *partner.Client
	limiter   *rate.Limiter
	transform Transform
	validator *validate.Validator
	audit     *internalaudit.Dispatcher
	metrics   *Metrics
	logger    *slog.Logger

	state    atomic.Int32
	inFlight atomic.Bool
	loading  atomic.Bool
}

// Close flushes pending audit events.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.audit.Close()
}

// AuditDropped returns the number of audit events lost to backpressure.
func (c *Client) AuditDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.audit.Dropped()
}

// MetricsSnapshot returns a copy of the client metrics.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

func (c *Client) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

// State reports the current submission state.
func (c *Client) State() State {
	if c == nil {
		return StateIdle
	}
	return State(c.state.Load())
}

// Loading is true while a validated submission talks to the network.
func (c *Client) Loading() bool {
	return c != nil && c.loading.Load()
}

// Partner exposes the partner session client for authenticated calls.
func (c *Client) Partner() *partner.Client {
	if c == nil {
		return nil
	}
	return c.partner
}

// AuthorizedFetch performs an authenticated partner API call. See partner.Client.
func (c *Client) AuthorizedFetch(ctx context.Context, req partner.Request) (*http.Response, error) {
	if c == nil || c.partner == nil {
		return nil, ErrClientNotReady
	}
	return c.partner.AuthorizedFetch(ctx, req)
}

// Submit validates creds and runs one sign-in attempt.
//
// A classified provider rejection is not an error: the returned SubmitResult carries the
// messages and err is nil. err is non-nil for validation failures, throttling, a failed
// verification send, a failed navigation, and concurrent submissions.
func (c *Client) Submit(ctx context.Context, creds Credentials) (SubmitResult, error) {
	if c == nil || c.partner == nil {
		return SubmitResult{}, ErrClientNotReady
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		c.metricInc(MetricSubmitRejected)
		return SubmitResult{State: c.State()}, ErrSubmissionInFlight
	}
	defer c.inFlight.Store(false)

	return c.submit(ctx, creds.Email, creds.Password)
}

// SubmitEncrypted decrypts both fields with the configured Transform, then submits. Any
// decrypt failure ends the attempt before the network is used.
func (c *Client) SubmitEncrypted(ctx context.Context, enc EncryptedCredentials) (SubmitResult, error) {
	if c == nil || c.partner == nil {
		return SubmitResult{}, ErrClientNotReady
	}
	if c.transform == nil {
		return SubmitResult{}, ErrTransformNotConfigured
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		c.metricInc(MetricSubmitRejected)
		return SubmitResult{State: c.State()}, ErrSubmissionInFlight
	}
	defer c.inFlight.Store(false)

	ctx, _ = ensureRequestID(ctx)
	email, err := c.transform.Decrypt(enc.Email)
	if err == nil {
		var password string
		password, err = c.transform.Decrypt(enc.Password)
		if err == nil {
			return c.submit(ctx, email, password)
		}
	}

	c.metricInc(MetricDecryptFailure)
	c.emitAudit(ctx, auditEventDecryptFailed, false, "", ErrDecryptFailed, nil)
	c.logger.WarnContext(ctx, "submit: encrypted credentials rejected", slog.Any("error", err))
	c.state.Store(int32(StateIdle))

	failed := outcome.Outcome{
		Kind:     outcome.RecoverableError,
		Messages: []string{outcome.MsgLinkInvalid},
	}
	return SubmitResult{
		State:          StateIdle,
		Outcome:        failed,
		PasswordErrors: failed.Messages,
	}, ErrDecryptFailed
}

func (c *Client) submit(ctx context.Context, email, password string) (SubmitResult, error) {
	ctx, _ = ensureRequestID(ctx)
	c.metricInc(MetricSubmit)
	start := time.Now()

	finished := false
	defer func() {
		c.loading.Store(false)
		if !finished {
			c.state.Store(int32(StateIdle))
		}
	}()

	out := flows.RunSubmit(ctx, c.submitDeps(), email, password)
	finished = true

	c.state.Store(int32(out.Stage))
	if out.Validated {
		c.metrics.Observe(MetricSubmitLatency, time.Since(start))
	}

	return SubmitResult{
		State:          State(out.Stage),
		Outcome:        out.Outcome,
		EmailErrors:    out.EmailErrors,
		PasswordErrors: out.PasswordErrors,
		Route:          out.Route,
	}, out.Err
}

func (c *Client) submitDeps() flows.SubmitDeps {
	deps := flows.SubmitDeps{
		Validator: c.validator,
		Routes: flows.SubmitRoutes{
			Workspace: c.config.Routes.Workspace,
			Verify:    c.config.Routes.Verify,
		},
		Logger:            c.logger,
		SetStage:          c.setStage,
		SignIn:            c.signIn,
		SendVerification:  c.sendVerification,
		Bootstrap:         c.bootstrap,
		MarkReturningUser: c.markReturningUser,
		RememberVerificationEmail: func(ctx context.Context, email string) error {
			if err := c.session.Set(ctx, c.config.Storage.VerificationEmailKey, email); err != nil {
				return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
			}
			return nil
		},
		Navigate: c.navigator.Navigate,
		MetricInc: func(id int) {
			c.metricInc(MetricID(id))
		},
		Metrics: flows.SubmitMetrics{
			ValidationFailure:      int(MetricValidationFailure),
			SignInSuccess:          int(MetricSignInSuccess),
			SignInFailure:          int(MetricSignInFailure),
			VerificationRequired:   int(MetricVerificationRequired),
			VerificationSent:       int(MetricVerificationSent),
			VerificationSendFailed: int(MetricVerificationSendFailure),
			Throttled:              int(MetricThrottled),
			NavigationFailure:      int(MetricNavigationFailure),
		},
		Emit: c.emitAudit,
		Events: flows.SubmitEvents{
			ValidationFailed:       auditEventValidationFailed,
			SignInSuccess:          auditEventSignInSuccess,
			SignInFailure:          auditEventSignInFailure,
			VerificationRequired:   auditEventVerificationRequired,
			VerificationSendFailed: auditEventVerificationSendFailed,
			Throttled:              auditEventThrottled,
		},
		Errors: flows.SubmitErrors{
			Validation:             ErrValidation,
			Throttled:              ErrThrottled,
			VerificationSendFailed: ErrVerificationSendFailed,
			NavigationFailed:       ErrNavigationFailed,
		},
	}

	if c.limiter != nil {
		deps.CheckThrottle = func(ctx context.Context, email string) (bool, error) {
			err := c.limiter.Check(ctx, email, clientIPFromContext(ctx))
			if errors.Is(err, rate.ErrRateLimited) {
				return true, nil
			}
			return false, err
		}
		deps.RecordFailure = func(ctx context.Context, email string) error {
			err := c.limiter.Increment(ctx, email, clientIPFromContext(ctx))
			if errors.Is(err, rate.ErrRateLimited) {
				return nil
			}
			return err
		}
		deps.ResetThrottle = c.limiter.Reset
	}
	return deps
}

func (c *Client) setStage(s flows.Stage) {
	if s >= flows.StageAuthenticating {
		c.loading.Store(true)
	}
	c.state.Store(int32(s))
}

func (c *Client) signIn(ctx context.Context, email, password string) (*outcome.ProviderError, error) {
	res, err := c.primary.SignIn(ctx, SignInRequest{
		Email:       email,
		Password:    password,
		CallbackURL: c.config.Primary.CallbackURL,
	})
	if err != nil {
		return nil, err
	}
	return res.Error, nil
}

func (c *Client) sendVerification(ctx context.Context, email string) error {
	return c.primary.SendVerificationOTP(ctx, VerificationRequest{
		Email: email,
		Type:  VerificationTypeEmail,
	})
}

func (c *Client) bootstrap(ctx context.Context, email, password string) {
	c.partner.BootstrapSession(ctx, partner.Credentials{
		Username: email,
		Password: password,
	})
}

func (c *Client) markReturningUser(ctx context.Context) error {
	if err := c.durable.Set(ctx, c.config.Storage.ReturningUserKey, "true"); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// observePartner maps partner session events onto metrics.
func (c *Client) observePartner(e partner.Event) {
	switch e.Kind {
	case partner.EventBootstrapSuccess:
		c.metricInc(MetricBootstrapSuccess)
	case partner.EventBootstrapDegraded:
		c.metricInc(MetricBootstrapDegraded)
	case partner.EventBootstrapFailure:
		c.metricInc(MetricBootstrapFailure)
	case partner.EventRefreshSuccess:
		c.metricInc(MetricRefreshSuccess)
	case partner.EventRefreshFailure:
		c.metricInc(MetricRefreshFailure)
	case partner.EventRetry:
		c.metricInc(MetricRetry)
	case partner.EventSessionExpired:
		c.metricInc(MetricSessionExpired)
	}
}

// HasLoggedInBefore reports whether a sign-in has ever succeeded with this durable store.
// Storage failures read as false.
func (c *Client) HasLoggedInBefore(ctx context.Context) bool {
	if c == nil || c.durable == nil {
		return false
	}
	v, ok, err := c.durable.Get(ctx, c.config.Storage.ReturningUserKey)
	if err != nil {
		c.logger.WarnContext(ctx, "read returning-user flag", slog.Any("error", err))
		return false
	}
	return ok && v == "true"
}

// PendingVerificationEmail returns the email awaiting verification in this session.
func (c *Client) PendingVerificationEmail(ctx context.Context) (string, bool) {
	if c == nil || c.session == nil {
		return "", false
	}
	v, ok, err := c.session.Get(ctx, c.config.Storage.VerificationEmailKey)
	if err != nil {
		c.logger.WarnContext(ctx, "read pending verification email", slog.Any("error", err))
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// SignOut discards the partner token pair. The returning-user flag is kept.
func (c *Client) SignOut(ctx context.Context) error {
	if c == nil || c.partner == nil {
		return ErrClientNotReady
	}
	ctx, _ = ensureRequestID(ctx)
	if err := c.partner.Store().Clear(ctx); err != nil {
		c.emitAudit(ctx, auditEventSignOut, false, "", err, nil)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	c.metricInc(MetricSignOut)
	c.emitAudit(ctx, auditEventSignOut, true, "", nil, nil)
	return nil
}
