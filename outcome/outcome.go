package outcome

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind is the outcome variant.
type Kind int

const (
	// Success means the provider accepted the credentials.
	Success Kind = iota
	// RecoverableError returns control to the user with Messages.
	RecoverableError
	// VerificationRequired means the account exists but its email is unverified.
	VerificationRequired
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case RecoverableError:
		return "recoverable_error"
	case VerificationRequired:
		return "verification_required"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MsgGeneric leads every recoverable outcome.
const MsgGeneric = "Invalid email or password"

// CodeNetworkError is the code assigned to transport failures.
const CodeNetworkError = "NETWORK_ERROR"

// Outcome is the result of one sign-in attempt. Email is set only for VerificationRequired.
type Outcome struct {
	Kind     Kind
	Messages []string
	Email    string
}

// ProviderError is a structured primary-provider failure. Status is the HTTP status when
// known.
type ProviderError struct {
	Status  int
	Code    string
	Message string
}

func (e ProviderError) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return e.Code + ": " + e.Message
	case e.Code != "":
		return e.Code
	case e.Message != "":
		return e.Message
	default:
		return "provider error"
	}
}

// FromError extracts a ProviderError from err. Any other non-nil error is a transport
// failure and maps to CodeNetworkError.
func FromError(err error) ProviderError {
	var pe ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	var ppe *ProviderError
	if errors.As(err, &ppe) && ppe != nil {
		return *ppe
	}

	msg := "network request failed"
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		msg = "network timeout"
	case errors.As(err, &netErr) && netErr.Timeout():
		msg = "network timeout"
	}
	return ProviderError{Code: CodeNetworkError, Message: msg}
}

// Recoverable builds a RecoverableError outcome led by MsgGeneric.
func Recoverable(detail string) Outcome {
	msgs := []string{MsgGeneric}
	if detail != "" {
		msgs = append(msgs, detail)
	}
	return Outcome{Kind: RecoverableError, Messages: msgs}
}

// Succeeded is the Success outcome.
func Succeeded() Outcome {
	return Outcome{Kind: Success}
}
