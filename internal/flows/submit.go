package flows

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/simstudio/authclient/outcome"
	"github.com/simstudio/authclient/validate"
)

// Stage mirrors the public submission state. Values must stay in step with
// authclient.State.
type Stage int32

const (
	StageIdle Stage = iota
	StageValidating
	StageAuthenticating
	StageBootstrappingSession
	StageClassifying
	StageSendingOTP
	StageNavigating
)

// SubmitMetrics carries metric IDs used by the submit flow.
type SubmitMetrics struct {
	ValidationFailure      int
	SignInSuccess          int
	SignInFailure          int
	VerificationRequired   int
	VerificationSent       int
	VerificationSendFailed int
	Throttled              int
	NavigationFailure      int
}

// SubmitEvents carries audit event names used by the submit flow.
type SubmitEvents struct {
	ValidationFailed       string
	SignInSuccess          string
	SignInFailure          string
	VerificationRequired   string
	VerificationSendFailed string
	Throttled              string
}

// SubmitErrors carries host-level sentinel errors.
type SubmitErrors struct {
	Validation             error
	Throttled              error
	VerificationSendFailed error
	NavigationFailed       error
}

// SubmitRoutes holds navigation targets.
type SubmitRoutes struct {
	Workspace string
	Verify    string
}

// AuditFunc emits one audit event. meta may be nil.
type AuditFunc func(ctx context.Context, eventType string, success bool, subject string, err error, meta map[string]string)

// SubmitDeps captures everything one submission touches. Optional hooks may be nil.
type SubmitDeps struct {
	Validator *validate.Validator
	Routes    SubmitRoutes
	Logger    *slog.Logger

	SetStage func(Stage)

	// SignIn returns a logical provider rejection, or an error for transport failures.
	SignIn           func(ctx context.Context, email, password string) (*outcome.ProviderError, error)
	SendVerification func(ctx context.Context, email string) error
	// Bootstrap is best effort; it must not panic or block past ctx.
	Bootstrap func(ctx context.Context, email, password string)

	// CheckThrottle reports whether email is over its failed-attempt budget.
	CheckThrottle func(ctx context.Context, email string) (bool, error)
	RecordFailure func(ctx context.Context, email string) error
	ResetThrottle func(ctx context.Context, email string) error

	MarkReturningUser         func(ctx context.Context) error
	RememberVerificationEmail func(ctx context.Context, email string) error
	Navigate                  func(ctx context.Context, route string) error

	MetricInc func(int)
	Metrics   SubmitMetrics
	Emit      AuditFunc
	Events    SubmitEvents
	Errors    SubmitErrors
}

// SubmitOutput is the terminal result of RunSubmit. Stage is StageIdle or StageNavigating.
type SubmitOutput struct {
	Stage          Stage
	Outcome        outcome.Outcome
	EmailErrors    []string
	PasswordErrors []string
	Route          string
	// Validated is true when input passed validation and the network was used.
	Validated bool
	Err       error
}

func (d *SubmitDeps) inc(id int) {
	if d.MetricInc != nil {
		d.MetricInc(id)
	}
}

func (d *SubmitDeps) emit(ctx context.Context, eventType string, success bool, subject string, err error, meta map[string]string) {
	if d.Emit != nil && eventType != "" {
		d.Emit(ctx, eventType, success, subject, err, meta)
	}
}

func (d *SubmitDeps) stage(s Stage) {
	if d.SetStage != nil {
		d.SetStage(s)
	}
}

// RunSubmit validates credentials, signs in with the primary provider while bootstrapping
// the partner session, classifies failures and navigates. Bootstrap never changes the
// result and has finished when RunSubmit returns.
func RunSubmit(ctx context.Context, deps SubmitDeps, rawEmail, password string) SubmitOutput {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	deps.stage(StageValidating)
	emailErrs := deps.Validator.Email(rawEmail)
	passwordErrs := deps.Validator.Password(password)
	if len(emailErrs) > 0 || len(passwordErrs) > 0 {
		deps.inc(deps.Metrics.ValidationFailure)
		deps.emit(ctx, deps.Events.ValidationFailed, false, "", deps.Errors.Validation, map[string]string{
			"email_invalid":    boolString(len(emailErrs) > 0),
			"password_invalid": boolString(len(passwordErrs) > 0),
		})
		return SubmitOutput{
			Stage:          StageIdle,
			Outcome:        outcome.Outcome{Kind: outcome.RecoverableError},
			EmailErrors:    emailErrs,
			PasswordErrors: passwordErrs,
			Err:            deps.Errors.Validation,
		}
	}
	email := validate.NormalizeEmail(rawEmail)

	if deps.CheckThrottle != nil {
		limited, err := deps.CheckThrottle(ctx, email)
		if err != nil {
			logger.WarnContext(ctx, "submit: attempt throttle unavailable", slog.Any("error", err))
		}
		if limited {
			deps.inc(deps.Metrics.Throttled)
			deps.emit(ctx, deps.Events.Throttled, false, email, deps.Errors.Throttled, nil)
			out := outcome.Recoverable(outcome.MsgTooManyAttempts)
			return SubmitOutput{
				Stage:          StageIdle,
				Outcome:        out,
				PasswordErrors: out.Messages,
				Validated:      true,
				Err:            deps.Errors.Throttled,
			}
		}
	}

	deps.stage(StageAuthenticating)
	var bootstrap sync.WaitGroup
	if deps.Bootstrap != nil {
		bootstrap.Add(1)
		go func() {
			defer bootstrap.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.ErrorContext(ctx, "submit: session bootstrap panicked", slog.Any("panic", r))
				}
			}()
			deps.Bootstrap(ctx, email, password)
		}()
	}
	defer bootstrap.Wait()

	rejection, err := deps.SignIn(ctx, email, password)
	if err == nil && rejection == nil {
		return succeed(ctx, &deps, logger, email, &bootstrap)
	}

	deps.stage(StageClassifying)
	var perr outcome.ProviderError
	if rejection != nil {
		perr = *rejection
	} else {
		perr = outcome.FromError(err)
		if perr.Code == outcome.CodeNetworkError {
			logger.WarnContext(ctx, "submit: sign-in transport failure", slog.Any("error", err))
		}
	}
	result := outcome.Classify(perr, email)

	if result.Kind == outcome.VerificationRequired {
		return verify(ctx, &deps, logger, email, result)
	}

	deps.inc(deps.Metrics.SignInFailure)
	deps.emit(ctx, deps.Events.SignInFailure, false, email, nil, map[string]string{
		"code":   perr.Code,
		"status": fmt.Sprint(perr.Status),
	})
	if deps.RecordFailure != nil && perr.Code != outcome.CodeNetworkError {
		if err := deps.RecordFailure(ctx, email); err != nil {
			logger.WarnContext(ctx, "submit: record failed attempt", slog.Any("error", err))
		}
	}
	return SubmitOutput{
		Stage:          StageIdle,
		Outcome:        result,
		PasswordErrors: result.Messages,
		Validated:      true,
	}
}

func succeed(ctx context.Context, deps *SubmitDeps, logger *slog.Logger, email string, bootstrap *sync.WaitGroup) SubmitOutput {
	deps.stage(StageBootstrappingSession)
	bootstrap.Wait()

	deps.inc(deps.Metrics.SignInSuccess)
	deps.emit(ctx, deps.Events.SignInSuccess, true, email, nil, nil)

	if deps.MarkReturningUser != nil {
		if err := deps.MarkReturningUser(ctx); err != nil {
			logger.WarnContext(ctx, "submit: mark returning user", slog.Any("error", err))
		}
	}
	if deps.ResetThrottle != nil {
		if err := deps.ResetThrottle(ctx, email); err != nil {
			logger.WarnContext(ctx, "submit: reset attempt throttle", slog.Any("error", err))
		}
	}

	return navigate(ctx, deps, outcome.Succeeded(), deps.Routes.Workspace)
}

func verify(ctx context.Context, deps *SubmitDeps, logger *slog.Logger, email string, result outcome.Outcome) SubmitOutput {
	deps.inc(deps.Metrics.VerificationRequired)
	deps.emit(ctx, deps.Events.VerificationRequired, false, email, nil, nil)

	deps.stage(StageSendingOTP)
	if err := deps.SendVerification(ctx, email); err != nil {
		logger.WarnContext(ctx, "submit: send verification code", slog.Any("error", err))
		deps.inc(deps.Metrics.VerificationSendFailed)
		deps.emit(ctx, deps.Events.VerificationSendFailed, false, email, err, nil)
		failed := outcome.Outcome{
			Kind:     outcome.RecoverableError,
			Messages: []string{outcome.MsgVerificationSendFail},
		}
		return SubmitOutput{
			Stage:          StageIdle,
			Outcome:        failed,
			PasswordErrors: failed.Messages,
			Validated:      true,
			Err:            deps.Errors.VerificationSendFailed,
		}
	}
	deps.inc(deps.Metrics.VerificationSent)

	if deps.RememberVerificationEmail != nil {
		if err := deps.RememberVerificationEmail(ctx, email); err != nil {
			logger.WarnContext(ctx, "submit: remember verification email", slog.Any("error", err))
		}
	}
	return navigate(ctx, deps, result, deps.Routes.Verify)
}

func navigate(ctx context.Context, deps *SubmitDeps, result outcome.Outcome, route string) SubmitOutput {
	deps.stage(StageNavigating)
	if deps.Navigate != nil {
		if err := deps.Navigate(ctx, route); err != nil {
			deps.inc(deps.Metrics.NavigationFailure)
			return SubmitOutput{
				Stage:     StageIdle,
				Outcome:   result,
				Validated: true,
				Err:       fmt.Errorf("%w: %s: %v", deps.Errors.NavigationFailed, route, err),
			}
		}
	}
	return SubmitOutput{
		Stage:     StageNavigating,
		Outcome:   result,
		Route:     route,
		Validated: true,
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
