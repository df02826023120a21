package outcome

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestClassifyTable(t *testing.T) {
	tests := []struct {
		name   string
		err    ProviderError
		detail string
	}{
		{name: "bad request code", err: ProviderError{Code: "BAD_REQUEST"}, detail: MsgSignInDisabled},
		{name: "sign in disabled message", err: ProviderError{Message: "email sign in is not enabled"}, detail: MsgSignInDisabled},
		{name: "invalid credentials", err: ProviderError{Code: "INVALID_CREDENTIALS"}, detail: MsgInvalidCredentials},
		{name: "invalid email or password code", err: ProviderError{Code: "INVALID_EMAIL_OR_PASSWORD"}, detail: ""},
		{name: "invalid password message", err: ProviderError{Message: "invalid password"}, detail: MsgInvalidCredentials},
		{name: "user not found", err: ProviderError{Code: "USER_NOT_FOUND"}, detail: MsgUserNotFound},
		{name: "not found message", err: ProviderError{Message: "user not found"}, detail: MsgUserNotFound},
		{name: "missing credentials", err: ProviderError{Code: "MISSING_CREDENTIALS"}, detail: MsgMissingCredentials},
		{name: "email password disabled", err: ProviderError{Code: "EMAIL_PASSWORD_DISABLED"}, detail: MsgEmailPasswordOff},
		{name: "session failed", err: ProviderError{Code: "FAILED_TO_CREATE_SESSION"}, detail: MsgSessionFailed},
		{name: "too many attempts", err: ProviderError{Code: "TOO_MANY_ATTEMPTS"}, detail: MsgTooManyAttempts},
		{name: "too many attempts lower", err: ProviderError{Code: "too many attempts"}, detail: MsgTooManyAttempts},
		{name: "rate limit code", err: ProviderError{Code: "RATE_LIMIT_EXCEEDED"}, detail: MsgTooManyRequests},
		{name: "too many requests message", err: ProviderError{Message: "too many requests"}, detail: MsgTooManyRequests},
		{name: "account locked", err: ProviderError{Code: "ACCOUNT_LOCKED"}, detail: MsgAccountLocked},
		{name: "account locked message", err: ProviderError{Message: "account locked"}, detail: MsgAccountLocked},
		{name: "network code", err: ProviderError{Code: CodeNetworkError}, detail: MsgNetwork},
		{name: "network message", err: ProviderError{Message: "network unreachable"}, detail: MsgNetwork},
		{name: "unknown", err: ProviderError{Code: "SOMETHING_ELSE", Message: "boom"}, detail: ""},
		{name: "empty", err: ProviderError{}, detail: ""},
		{name: "case sensitive", err: ProviderError{Code: "invalid_credentials"}, detail: ""},
		{name: "first match wins", err: ProviderError{Code: "BAD_REQUEST", Message: "invalid password"}, detail: MsgSignInDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err, "user@company.com")
			want := []string{MsgGeneric}
			if tt.detail != "" {
				want = append(want, tt.detail)
			}
			if got.Kind != RecoverableError {
				t.Fatalf("kind = %v, want recoverable", got.Kind)
			}
			if !reflect.DeepEqual(got.Messages, want) {
				t.Fatalf("messages = %v, want %v", got.Messages, want)
			}
			if got.Email != "" {
				t.Fatalf("recoverable outcome must not carry email, got %q", got.Email)
			}
		})
	}
}

func TestClassifyVerificationRequired(t *testing.T) {
	for _, err := range []ProviderError{
		{Code: "EMAIL_NOT_VERIFIED"},
		{Code: "AUTH_EMAIL_NOT_VERIFIED_YET", Message: "invalid password"},
		{Message: "email not verified"},
	} {
		got := Classify(err, "user@company.com")
		if got.Kind != VerificationRequired || got.Email != "user@company.com" || got.Messages != nil {
			t.Fatalf("Classify(%+v) = %+v", err, got)
		}
	}
}

func TestInvalidCredentialsExactMessages(t *testing.T) {
	got := Classify(ProviderError{Code: "INVALID_CREDENTIALS"}, "x@y.z")
	want := []string{"Invalid email or password", "Invalid email or password. Please try again."}
	if !reflect.DeepEqual(got.Messages, want) {
		t.Fatalf("messages = %v, want %v", got.Messages, want)
	}
}

func TestFromError(t *testing.T) {
	pe := ProviderError{Status: 401, Code: "INVALID_CREDENTIALS"}
	if got := FromError(fmt.Errorf("sign in: %w", pe)); got != pe {
		t.Fatalf("wrapped provider error = %+v", got)
	}
	if got := FromError(&pe); got != pe {
		t.Fatalf("pointer provider error = %+v", got)
	}

	got := FromError(errors.New("dial tcp: connection refused"))
	if got.Code != CodeNetworkError {
		t.Fatalf("transport error code = %q", got.Code)
	}
	if out := Classify(got, ""); out.Messages[1] != MsgNetwork {
		t.Fatalf("transport error should classify as network, got %v", out.Messages)
	}

	if got := FromError(context.DeadlineExceeded); got.Message != "network timeout" {
		t.Fatalf("deadline message = %q", got.Message)
	}
}

func FuzzClassify(f *testing.F) {
	f.Add("INVALID_CREDENTIALS", "")
	f.Add("", "not verified")
	f.Add("RATE_LIMIT", "too many requests")
	f.Fuzz(func(t *testing.T, code, message string) {
		out := Classify(ProviderError{Code: code, Message: message}, "e@x.io")
		switch out.Kind {
		case VerificationRequired:
			if !strings.Contains(code, "EMAIL_NOT_VERIFIED") && !strings.Contains(message, "not verified") {
				t.Fatalf("unexpected verification outcome for %q/%q", code, message)
			}
		case RecoverableError:
			if len(out.Messages) == 0 || len(out.Messages) > 2 || out.Messages[0] != MsgGeneric {
				t.Fatalf("bad recoverable messages %v", out.Messages)
			}
		default:
			t.Fatalf("unexpected kind %v", out.Kind)
		}
	})
}
