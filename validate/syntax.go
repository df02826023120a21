package validate

import (
	"github.com/go-playground/validator/v10"
)

const maxEmailLength = 254

// SyntaxChecker validates email syntax with go-playground/validator's "email" rule and
// rejects addresses longer than 254 bytes.
type SyntaxChecker struct {
	v *validator.Validate
}

// NewSyntaxChecker returns a ready SyntaxChecker.
func NewSyntaxChecker() *SyntaxChecker {
	return &SyntaxChecker{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Check implements EmailChecker.
func (c *SyntaxChecker) Check(email string) (bool, string) {
	if len(email) > maxEmailLength {
		return false, "Email address is too long."
	}
	if err := c.v.Var(email, "required,email"); err != nil {
		return false, MsgEmailInvalid
	}
	return true, ""
}

var defaultChecker EmailChecker = NewSyntaxChecker()
