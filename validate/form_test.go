package validate

import (
	"reflect"
	"testing"
)

func TestFormHidesErrorsUntilSubmit(t *testing.T) {
	f := NewForm(nil)
	f.SetEmail("bad")
	f.SetPassword("")

	if got := f.Visible(); !got.Empty() {
		t.Fatalf("errors visible before submit: %+v", got)
	}

	if f.MarkSubmitted() {
		t.Fatal("expected invalid form")
	}
	got := f.Visible()
	if !reflect.DeepEqual(got.Email, []string{MsgEmailInvalid}) {
		t.Fatalf("email errors = %v", got.Email)
	}
	if !reflect.DeepEqual(got.Password, []string{MsgPasswordRequired}) {
		t.Fatalf("password errors = %v", got.Password)
	}
}

func TestFormTypingPasswordHidesPasswordErrors(t *testing.T) {
	f := NewForm(nil)
	f.MarkSubmitted()
	f.SetPassword(" ")

	got := f.Visible()
	if len(got.Password) != 0 {
		t.Fatalf("password errors should be hidden after typing, got %v", got.Password)
	}
	if !reflect.DeepEqual(got.Email, []string{MsgEmailRequired}) {
		t.Fatalf("email errors should stay visible, got %v", got.Email)
	}
}

func TestFormPrefillEmailVisibleImmediately(t *testing.T) {
	f := NewForm(nil)
	f.PrefillEmail("not%20an%20email")
	got := f.Visible()
	if !reflect.DeepEqual(got.Email, []string{MsgEmailInvalid}) {
		t.Fatalf("prefilled email errors = %v", got.Email)
	}
	if email, _ := f.Values(); email != "not an email" {
		t.Fatalf("email not unescaped: %q", email)
	}

	f.PrefillEmail("user%40company.com")
	if got := f.Visible(); len(got.Email) != 0 {
		t.Fatalf("valid prefill should clear errors, got %v", got.Email)
	}
}

func TestFormValidSubmit(t *testing.T) {
	f := NewForm(nil)
	f.SetEmail("user@company.com")
	f.SetPassword("password123")
	if !f.MarkSubmitted() {
		t.Fatalf("expected valid form, errors %+v", f.Visible())
	}

	f.ShowPasswordErrors([]string{"Invalid email or password"})
	if got := f.Visible(); !reflect.DeepEqual(got.Password, []string{"Invalid email or password"}) {
		t.Fatalf("provider errors not shown: %v", got.Password)
	}
}
