package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func newPrimaryServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/sign-in/email", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case body.Email == "unverified@company.com":
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"code":"EMAIL_NOT_VERIFIED","message":"Email not verified"}`))
		case body.Password != "password123":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"INVALID_EMAIL_OR_PASSWORD","message":"Invalid email or password"}`))
		default:
			_, _ = w.Write([]byte(`{"user":{"id":"u-1"}}`))
		}
	})
	mux.HandleFunc("/email-otp/send-verification-otp", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newPartnerServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"access_token":"access-1","refresh_token":"refresh-1"}}`))
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"name":"user"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AUTHCLIENT_PRIMARY_BASE_URL", newPrimaryServer(t).URL)
	t.Setenv("AUTHCLIENT_PARTNER_BASE_URL", newPartnerServer(t).URL)
	t.Setenv("AUTHCLIENT_SQLITE_PATH", filepath.Join(t.TempDir(), "authclient.db"))
	t.Setenv("LOG_LEVEL", "error")
}

func TestRunSignsInAndFetches(t *testing.T) {
	setupEnv(t)
	var stdout, stderr bytes.Buffer

	code := run([]string{"-email", "user@company.com", "-password", "password123", "-fetch", "/me", "-metrics", "-env-file", ""}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{"next: /workspace", "200 OK /me", `{"name":"user"}`, "authclient_sign_in_success_total 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRunReportsRecoverableError(t *testing.T) {
	setupEnv(t)
	var stdout, stderr bytes.Buffer

	code := run([]string{"-email", "user@company.com", "-password", "wrong", "-env-file", ""}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if !strings.Contains(stdout.String(), "password: Invalid email or password") {
		t.Fatalf("unexpected output:\n%s", stdout.String())
	}
}

func TestRunVerificationRoute(t *testing.T) {
	setupEnv(t)
	var stdout, stderr bytes.Buffer

	code := run([]string{"-email", "unverified@company.com", "-password", "password123", "-env-file", ""}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "next: /verify") {
		t.Fatalf("unexpected output:\n%s", stdout.String())
	}
}

func TestRunRequiresPrimaryURL(t *testing.T) {
	setupEnv(t)
	t.Setenv("AUTHCLIENT_PRIMARY_BASE_URL", "")
	var stdout, stderr bytes.Buffer

	if code := run([]string{"-email", "user@company.com", "-password", "password123", "-env-file", ""}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")
	logger.Info("hidden")
	logger.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Fatalf("unexpected log output %q", out)
	}
}
