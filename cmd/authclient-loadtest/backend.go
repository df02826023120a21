package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/simstudio/authclient"
	"github.com/simstudio/authclient/internal/jwtissue"
)

// fakeBackend is an in-process primary provider plus an httptest partner API issuing signed
// access tokens. The partner rejects an access token once it has served expireEvery requests
// with it.
type fakeBackend struct {
	partner     *httptest.Server
	signer      *jwtissue.Manager
	expireEvery int64

	logins    atomic.Int64
	refreshes atomic.Int64
	seq       atomic.Int64

	mu   sync.Mutex
	uses map[string]int64
}

func newFakeBackend(expireEvery int) (*fakeBackend, error) {
	signer, err := jwtissue.NewManager(jwtissue.Config{
		AccessTTL:     time.Hour,
		SigningMethod: jwtissue.MethodHS256,
		PrivateKey:    []byte("loadtest-partner-signing-key-0001"),
		Issuer:        "authclient-loadtest",
	})
	if err != nil {
		return nil, err
	}
	f := &fakeBackend{
		signer:      signer,
		expireEvery: int64(expireEvery),
		uses:        make(map[string]int64),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", f.handleLogin)
	mux.HandleFunc("/auth/refresh", f.handleRefresh)
	mux.HandleFunc("/me", f.handleMe)
	f.partner = httptest.NewServer(mux)
	return f, nil
}

func (f *fakeBackend) Close() {
	f.partner.Close()
}

func (f *fakeBackend) partnerURL() string {
	return f.partner.URL
}

func (f *fakeBackend) SignIn(context.Context, authclient.SignInRequest) (authclient.SignInResult, error) {
	return authclient.SignInResult{UserID: "loadtest"}, nil
}

func (f *fakeBackend) SendVerificationOTP(context.Context, authclient.VerificationRequest) error {
	return nil
}

func (f *fakeBackend) issue(w http.ResponseWriter) {
	n := strconv.FormatInt(f.seq.Add(1), 10)
	access, err := f.signer.CreateAccess("loadtest", n)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]string{
			"access_token":  access,
			"refresh_token": "refresh-" + n,
		},
	})
}

func (f *fakeBackend) handleLogin(w http.ResponseWriter, _ *http.Request) {
	f.logins.Add(1)
	f.issue(w)
}

func (f *fakeBackend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !strings.HasPrefix(body.RefreshToken, "refresh-") {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	f.refreshes.Add(1)
	f.issue(w)
}

func (f *fakeBackend) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, err := f.signer.ParseAccess(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if f.expireEvery > 0 {
		f.mu.Lock()
		f.uses[claims.SID]++
		expired := f.uses[claims.SID] > f.expireEvery
		f.mu.Unlock()
		if expired {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}`))
}
