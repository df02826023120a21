package validate

import (
	"net/url"
	"sync"
)

// Form tracks live validation for one sign-in form. Errors are recomputed on every change
// but only reported by Visible after the first submit attempt, or immediately for an email
// prefilled from a link.
type Form struct {
	mu sync.Mutex

	v        *Validator
	email    string
	password string

	emailErrors    []string
	passwordErrors []string

	showEmail    bool
	showPassword bool
}

// FieldErrors is the visible error state of a form.
type FieldErrors struct {
	Email    []string
	Password []string
}

// Empty reports whether no errors are visible.
func (f FieldErrors) Empty() bool {
	return len(f.Email) == 0 && len(f.Password) == 0
}

// NewForm returns an empty form validated by v (default rules when nil).
func NewForm(v *Validator) *Form {
	if v == nil {
		v = defaultValidator
	}
	f := &Form{v: v}
	f.emailErrors = v.Email("")
	f.passwordErrors = v.Password("")
	return f
}

// SetEmail records new email input.
func (f *Form) SetEmail(raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.email = raw
	f.emailErrors = f.v.Email(raw)
}

// SetPassword records new password input. Typing in the password field hides the password
// error block until the next submit.
func (f *Form) SetPassword(raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.password = raw
	f.passwordErrors = f.v.Password(raw)
	f.showPassword = false
}

// PrefillEmail sets the email from a URL query value. Its errors are visible at once.
func (f *Form) PrefillEmail(queryValue string) {
	decoded, err := url.QueryUnescape(queryValue)
	if err != nil {
		decoded = queryValue
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.email = decoded
	f.emailErrors = f.v.Email(decoded)
	f.showEmail = true
}

// MarkSubmitted makes current errors visible and reports whether the form is valid.
func (f *Form) MarkSubmitted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emailErrors = f.v.Email(f.email)
	f.passwordErrors = f.v.Password(f.password)
	f.showEmail = true
	f.showPassword = true
	return len(f.emailErrors) == 0 && len(f.passwordErrors) == 0
}

// ShowPasswordErrors replaces the password errors with msgs and makes them visible. Used to
// render provider failures inline under the password field.
func (f *Form) ShowPasswordErrors(msgs []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwordErrors = append([]string(nil), msgs...)
	f.showPassword = true
}

// Values returns the raw field values.
func (f *Form) Values() (email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email, f.password
}

// Visible returns the errors that should currently be displayed.
func (f *Form) Visible() FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out FieldErrors
	if f.showEmail {
		out.Email = append([]string(nil), f.emailErrors...)
	}
	if f.showPassword {
		out.Password = append([]string(nil), f.passwordErrors...)
	}
	return out
}
