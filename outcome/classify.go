package outcome

import "strings"

// Elaboration messages.
const (
	MsgSignInDisabled       = "Email sign in is currently disabled."
	MsgInvalidCredentials   = "Invalid email or password. Please try again."
	MsgUserNotFound         = "No account found with this email. Please sign up first."
	MsgMissingCredentials   = "Please enter both email and password."
	MsgEmailPasswordOff     = "Email and password login is disabled."
	MsgSessionFailed        = "Failed to create session. Please try again later."
	MsgTooManyAttempts      = "Too many login attempts. Please try again later or reset your password."
	MsgTooManyRequests      = "Too many requests. Please wait a moment before trying again."
	MsgAccountLocked        = "Your account has been locked for security. Please reset your password."
	MsgNetwork              = "Network error. Please check your connection and try again."
	MsgVerificationSendFail = "Failed to send verification code. Please try again later."
	MsgLinkInvalid          = "This sign-in link is invalid or has expired."
)

type rule struct {
	codes    []string
	messages []string
	detail   string
}

func (r rule) match(code, message string) bool {
	for _, c := range r.codes {
		if strings.Contains(code, c) {
			return true
		}
	}
	for _, m := range r.messages {
		if strings.Contains(message, m) {
			return true
		}
	}
	return false
}

// Rules after the verification check, in priority order.
var rules = []rule{
	{codes: []string{"BAD_REQUEST"}, messages: []string{"sign in is not enabled"}, detail: MsgSignInDisabled},
	{codes: []string{"INVALID_CREDENTIALS"}, messages: []string{"invalid password"}, detail: MsgInvalidCredentials},
	{codes: []string{"USER_NOT_FOUND"}, messages: []string{"not found"}, detail: MsgUserNotFound},
	{codes: []string{"MISSING_CREDENTIALS"}, detail: MsgMissingCredentials},
	{codes: []string{"EMAIL_PASSWORD_DISABLED"}, detail: MsgEmailPasswordOff},
	{codes: []string{"FAILED_TO_CREATE_SESSION"}, detail: MsgSessionFailed},
	{codes: []string{"too many attempts", "TOO_MANY_ATTEMPTS"}, detail: MsgTooManyAttempts},
	{codes: []string{"RATE_LIMIT"}, messages: []string{"rate limit", "too many requests"}, detail: MsgTooManyRequests},
	{codes: []string{"account locked", "ACCOUNT_LOCKED"}, messages: []string{"account locked"}, detail: MsgAccountLocked},
	{codes: []string{"network", "NETWORK"}, messages: []string{"network"}, detail: MsgNetwork},
}

var verificationRule = rule{
	codes:    []string{"EMAIL_NOT_VERIFIED"},
	messages: []string{"not verified"},
}

// Classify maps a provider error to an Outcome. email is echoed back for
// VerificationRequired so the caller can send the code.
func Classify(err ProviderError, email string) Outcome {
	if verificationRule.match(err.Code, err.Message) {
		return Outcome{Kind: VerificationRequired, Email: email}
	}
	for _, r := range rules {
		if r.match(err.Code, err.Message) {
			return Recoverable(r.detail)
		}
	}
	return Recoverable("")
}
