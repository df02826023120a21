package authclient

import (
	"context"
	"io"

	internalaudit "github.com/simstudio/authclient/internal/audit"
	"github.com/simstudio/authclient/outcome"
)

// Credentials are the raw values typed by the user. They are never persisted.
type Credentials struct {
	Email    string
	Password string
}

// EncryptedCredentials carry sealed field values from a sign-in link.
type EncryptedCredentials struct {
	Email    string
	Password string
}

// SignInRequest is sent to the primary provider.
type SignInRequest struct {
	Email       string
	Password    string
	CallbackURL string
}

// SignInResult is the primary provider's answer. A non-nil Error is a logical rejection and
// is classified exactly like a thrown error.
type SignInResult struct {
	UserID string
	Error  *outcome.ProviderError
}

// VerificationRequest asks the provider to send an email verification code.
type VerificationRequest struct {
	Email string
	Type  string
}

// VerificationTypeEmail is the OTP type used after a verification-required sign-in.
const VerificationTypeEmail = "email-verification"

// PrimaryProvider is the main account service.
type PrimaryProvider interface {
	SignIn(ctx context.Context, req SignInRequest) (SignInResult, error)
	SendVerificationOTP(ctx context.Context, req VerificationRequest) error
}

// Navigator moves the host application to a route.
type Navigator interface {
	Navigate(ctx context.Context, route string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, route string) error

// Navigate calls f.
func (f NavigatorFunc) Navigate(ctx context.Context, route string) error {
	return f(ctx, route)
}

// Transform reverses a sealed value. Implementations fail closed.
type Transform interface {
	Decrypt(ciphertext string) (string, error)
}

// State is the submission state machine position.
type State int32

const (
	StateIdle State = iota
	StateValidating
	StateAuthenticating
	StateBootstrappingSession
	StateClassifying
	StateSendingOTP
	StateNavigating
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateAuthenticating:
		return "authenticating"
	case StateBootstrappingSession:
		return "bootstrapping_session"
	case StateClassifying:
		return "classifying"
	case StateSendingOTP:
		return "sending_otp"
	case StateNavigating:
		return "navigating"
	default:
		return "unknown"
	}
}

// SubmitResult describes the terminal state of one submission. EmailErrors and
// PasswordErrors are the field messages to display; provider failures appear under
// PasswordErrors. Route is set when the client navigated.
type SubmitResult struct {
	State          State
	Outcome        outcome.Outcome
	EmailErrors    []string
	PasswordErrors []string
	Route          string
}

// AuditEvent is an audit record emitted to an AuditSink.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events.
type AuditSink = internalaudit.Sink

// NoOpSink drops audit events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink buffers audit events on a channel.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes audit events as JSON lines.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink returns a ChannelSink with the given buffer.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink writing one JSON object per line to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
