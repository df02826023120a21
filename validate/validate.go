package validate

import "strings"

// Field messages.
const (
	MsgEmailRequired    = "Email is required."
	MsgEmailInvalid     = "Please enter a valid email address."
	MsgPasswordRequired = "Password is required."
	MsgPasswordBlank    = "Password cannot be empty."
)

// EmailChecker decides whether a normalized email is syntactically acceptable. A failed
// check may carry a human-readable reason; an empty reason falls back to MsgEmailInvalid.
type EmailChecker interface {
	Check(email string) (ok bool, reason string)
}

// CheckerFunc adapts a function to EmailChecker.
type CheckerFunc func(email string) (bool, string)

// Check calls f.
func (f CheckerFunc) Check(email string) (bool, string) {
	return f(email)
}

// Validator binds a checker to the email and password rules.
type Validator struct {
	checker EmailChecker
}

// New returns a Validator using checker. A nil checker selects [SyntaxChecker].
func New(checker EmailChecker) *Validator {
	if checker == nil {
		checker = defaultChecker
	}
	return &Validator{checker: checker}
}

// Email validates raw email input. Empty or whitespace-only input short-circuits with
// MsgEmailRequired.
func (v *Validator) Email(raw string) []string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return []string{MsgEmailRequired}
	}

	checker := defaultChecker
	if v != nil && v.checker != nil {
		checker = v.checker
	}
	if ok, reason := checker.Check(email); !ok {
		if reason == "" {
			reason = MsgEmailInvalid
		}
		return []string{reason}
	}
	return nil
}

// Password validates raw password input. The password is never trimmed or normalized.
func (v *Validator) Password(raw string) []string {
	if raw == "" {
		return []string{MsgPasswordRequired}
	}
	if strings.TrimSpace(raw) == "" {
		return []string{MsgPasswordBlank}
	}
	return nil
}

var defaultValidator = New(nil)

// ValidateEmail validates with the default checker.
func ValidateEmail(raw string) []string {
	return defaultValidator.Email(raw)
}

// ValidatePassword validates a raw password.
func ValidatePassword(raw string) []string {
	return defaultValidator.Password(raw)
}

// NormalizeEmail trims and lower-cases an email the same way Email does before checking.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
