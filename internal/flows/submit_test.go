package flows

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/simstudio/authclient/outcome"
	"github.com/simstudio/authclient/validate"
)

var (
	errValidation = errors.New("validation")
	errThrottled  = errors.New("throttled")
	errSend       = errors.New("send failed")
	errNav        = errors.New("nav failed")
)

type recorder struct {
	mu        sync.Mutex
	stages    []Stage
	events    []string
	routes    []string
	signIns   atomic.Int32
	sends     atomic.Int32
	bootstrap atomic.Int32
	marked    atomic.Int32
	remember  []string
	failures  atomic.Int32
	resets    atomic.Int32
}

func (r *recorder) deps() SubmitDeps {
	return SubmitDeps{
		Validator: validate.New(nil),
		Routes:    SubmitRoutes{Workspace: "/workspace", Verify: "/verify"},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		SetStage: func(s Stage) {
			r.mu.Lock()
			r.stages = append(r.stages, s)
			r.mu.Unlock()
		},
		SignIn: func(context.Context, string, string) (*outcome.ProviderError, error) {
			r.signIns.Add(1)
			return nil, nil
		},
		SendVerification: func(context.Context, string) error {
			r.sends.Add(1)
			return nil
		},
		Bootstrap: func(context.Context, string, string) {
			r.bootstrap.Add(1)
		},
		RecordFailure: func(context.Context, string) error {
			r.failures.Add(1)
			return nil
		},
		ResetThrottle: func(context.Context, string) error {
			r.resets.Add(1)
			return nil
		},
		MarkReturningUser: func(context.Context) error {
			r.marked.Add(1)
			return nil
		},
		RememberVerificationEmail: func(_ context.Context, email string) error {
			r.mu.Lock()
			r.remember = append(r.remember, email)
			r.mu.Unlock()
			return nil
		},
		Navigate: func(_ context.Context, route string) error {
			r.mu.Lock()
			r.routes = append(r.routes, route)
			r.mu.Unlock()
			return nil
		},
		Emit: func(_ context.Context, eventType string, _ bool, _ string, _ error, _ map[string]string) {
			r.mu.Lock()
			r.events = append(r.events, eventType)
			r.mu.Unlock()
		},
		Events: SubmitEvents{
			ValidationFailed:       "submit_validation_failed",
			SignInSuccess:          "sign_in_success",
			SignInFailure:          "sign_in_failure",
			VerificationRequired:   "verification_required",
			VerificationSendFailed: "verification_send_failed",
			Throttled:              "submit_throttled",
		},
		Errors: SubmitErrors{
			Validation:             errValidation,
			Throttled:              errThrottled,
			VerificationSendFailed: errSend,
			NavigationFailed:       errNav,
		},
	}
}

func TestRunSubmitInvalidInputNeverCallsNetwork(t *testing.T) {
	cases := []struct{ email, password string }{
		{"", "password123"},
		{"   ", "password123"},
		{"user@company.com", ""},
		{"user@company.com", "  "},
		{"not-an-email", "password123"},
	}
	for _, c := range cases {
		r := &recorder{}
		out := RunSubmit(context.Background(), r.deps(), c.email, c.password)
		if out.Stage != StageIdle || !errors.Is(out.Err, errValidation) || out.Validated {
			t.Fatalf("%q/%q: unexpected output %+v", c.email, c.password, out)
		}
		if len(out.EmailErrors)+len(out.PasswordErrors) == 0 {
			t.Fatalf("%q/%q: expected field errors", c.email, c.password)
		}
		if r.signIns.Load()+r.bootstrap.Load()+r.sends.Load() != 0 {
			t.Fatalf("%q/%q: network was used", c.email, c.password)
		}
	}
}

func TestRunSubmitSuccess(t *testing.T) {
	r := &recorder{}
	out := RunSubmit(context.Background(), r.deps(), " User@Company.com ", "password123")

	if out.Stage != StageNavigating || out.Route != "/workspace" || out.Outcome.Kind != outcome.Success || out.Err != nil {
		t.Fatalf("unexpected output %+v", out)
	}
	if r.marked.Load() != 1 || r.resets.Load() != 1 || r.bootstrap.Load() != 1 {
		t.Fatalf("marked=%d resets=%d bootstrap=%d", r.marked.Load(), r.resets.Load(), r.bootstrap.Load())
	}
	want := []Stage{StageValidating, StageAuthenticating, StageBootstrappingSession, StageNavigating}
	if !reflect.DeepEqual(r.stages, want) {
		t.Fatalf("stages = %v, want %v", r.stages, want)
	}
}

func TestRunSubmitBootstrapRunsConcurrentlyAndIsAwaited(t *testing.T) {
	r := &recorder{}
	deps := r.deps()
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	deps.Bootstrap = func(context.Context, string, string) {
		close(started)
		<-release
		finished.Store(true)
	}
	deps.SignIn = func(context.Context, string, string) (*outcome.ProviderError, error) {
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Error("sign-in did not overlap bootstrap")
		}
		close(release)
		return nil, nil
	}

	out := RunSubmit(context.Background(), deps, "user@company.com", "password123")
	if out.Route != "/workspace" {
		t.Fatalf("unexpected output %+v", out)
	}
	if !finished.Load() {
		t.Fatal("RunSubmit returned before bootstrap finished")
	}
}

func TestRunSubmitBootstrapPanicDoesNotChangeResult(t *testing.T) {
	r := &recorder{}
	deps := r.deps()
	deps.Bootstrap = func(context.Context, string, string) { panic("partner exploded") }

	out := RunSubmit(context.Background(), deps, "user@company.com", "password123")
	if out.Stage != StageNavigating || out.Route != "/workspace" {
		t.Fatalf("unexpected output %+v", out)
	}
}

func TestRunSubmitRecoverableError(t *testing.T) {
	r := &recorder{}
	deps := r.deps()
	deps.SignIn = func(context.Context, string, string) (*outcome.ProviderError, error) {
		return &outcome.ProviderError{Status: 401, Code: "INVALID_CREDENTIALS"}, nil
	}

	out := RunSubmit(context.Background(), deps, "user@company.com", "password123")
	want := []string{outcome.MsgGeneric, outcome.MsgInvalidCredentials}
	if out.Stage != StageIdle || !reflect.DeepEqual(out.PasswordErrors, want) || out.Err != nil {
		t.Fatalf("unexpected output %+v", out)
	}
	if r.failures.Load() != 1 || r.marked.Load() != 0 || len(r.routes) != 0 {
		t.Fatalf("failures=%d marked=%d routes=%v", r.failures.Load(), r.marked.Load(), r.routes)
	}
}

func TestRunSubmitTransportErrorIsNetworkOutcome(t *testing.T) {
	r := &recorder{}
	deps := r.deps()
	deps.SignIn = func(context.Context, string, string) (*outcome.ProviderError, error) {
		return nil, errors.New("dial tcp: connection refused")
	}

	out := RunSubmit(context.Background(), deps, "user@company.com", "password123")
	if len(out.PasswordErrors) != 2 || out.PasswordErrors[1] != outcome.MsgNetwork {
		t.Fatalf("unexpected output %+v", out)
	}
	if r.failures.Load() != 0 {
		t.Fatal("network failures must not count against the attempt budget")
	}
}

func TestRunSubmitVerificationRequired(t *testing.T) {
	r := &recorder{}
	deps := r.deps()
	var sentTo string
	deps.SignIn = func(context.Context, string, string) (*outcome.ProviderError, error) {
		return &outcome.ProviderError{Code: "EMAIL_NOT_VERIFIED"}, nil
	}
	deps.SendVerification = func(_ context.Context, email string) error {
		sentTo = email
		return nil
	}

	out := RunSubmit(context.Background(), deps, "user@company.com", "password123")
	if out.Stage != StageNavigating || out.Route != "/verify" || out.Outcome.Kind != outcome.VerificationRequired {
		t.Fatalf("unexpected output %+v", out)
	}
	if sentTo != "user@company.com" || !reflect.DeepEqual(r.remember, []string{"user@company.com"}) {
		t.Fatalf("sentTo=%q remember=%v", sentTo, r.remember)
	}
	if r.marked.Load() != 0 {
		t.Fatal("verification path must not mark the returning-user flag")
	}
}

func TestRunSubmitVerificationSendFailure(t *testing.T) {
	r := &recorder{}
	deps := r.deps()
	deps.SignIn = func(context.Context, string, string) (*outcome.ProviderError, error) {
		return nil, outcome.ProviderError{Code: "EMAIL_NOT_VERIFIED"}
	}
	deps.SendVerification = func(context.Context, string) error { return errors.New("smtp down") }

	out := RunSubmit(context.Background(), deps, "user@company.com", "password123")
	if out.Stage != StageIdle || !errors.Is(out.Err, errSend) {
		t.Fatalf("unexpected output %+v", out)
	}
	if !reflect.DeepEqual(out.PasswordErrors, []string{outcome.MsgVerificationSendFail}) {
		t.Fatalf("password errors = %v", out.PasswordErrors)
	}
	if len(r.routes) != 0 || len(r.remember) != 0 {
		t.Fatalf("routes=%v remember=%v", r.routes, r.remember)
	}
}

func TestRunSubmitThrottled(t *testing.T) {
	r := &recorder{}
	deps := r.deps()
	deps.CheckThrottle = func(context.Context, string) (bool, error) { return true, nil }

	out := RunSubmit(context.Background(), deps, "user@company.com", "password123")
	if !errors.Is(out.Err, errThrottled) || out.PasswordErrors[1] != outcome.MsgTooManyAttempts {
		t.Fatalf("unexpected output %+v", out)
	}
	if r.signIns.Load() != 0 || r.bootstrap.Load() != 0 {
		t.Fatal("throttled submissions must not reach the network")
	}
}

func TestRunSubmitThrottleUnavailableFailsOpen(t *testing.T) {
	r := &recorder{}
	deps := r.deps()
	deps.CheckThrottle = func(context.Context, string) (bool, error) { return false, errors.New("redis down") }

	out := RunSubmit(context.Background(), deps, "user@company.com", "password123")
	if out.Route != "/workspace" {
		t.Fatalf("unexpected output %+v", out)
	}
}

func TestRunSubmitNavigationFailure(t *testing.T) {
	r := &recorder{}
	deps := r.deps()
	deps.Navigate = func(context.Context, string) error { return errors.New("router gone") }

	out := RunSubmit(context.Background(), deps, "user@company.com", "password123")
	if out.Stage != StageIdle || !errors.Is(out.Err, errNav) || out.Outcome.Kind != outcome.Success {
		t.Fatalf("unexpected output %+v", out)
	}
}
