package tokens

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/simstudio/authclient/internal/jwtissue"
	"github.com/simstudio/authclient/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSaveLoadClearRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemory(), WithLogger(quietLogger()))

	want := Pair{AccessToken: "a1", RefreshToken: "r1"}
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, ok := s.Load(ctx)
	if !ok || got != want {
		t.Fatalf("Load = %+v,%v want %+v", got, ok, want)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := s.Load(ctx); ok {
		t.Fatal("expected absent after Clear")
	}
}

func TestRecordIsSingleJSONValue(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s := NewStore(mem, WithKey("ns:partner"))

	if err := s.Save(ctx, Pair{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	raw, ok, err := mem.Get(ctx, "ns:partner")
	if err != nil || !ok {
		t.Fatalf("record missing: %v %v", ok, err)
	}
	if raw != `{"access_token":"a","refresh_token":"r"}` {
		t.Fatalf("unexpected record %s", raw)
	}
	if mem.Len() != 1 {
		t.Fatalf("expected one key, got %d", mem.Len())
	}
}

func TestLoadFailsClosed(t *testing.T) {
	ctx := context.Background()
	cases := map[string]string{
		"not json":        "{not json",
		"wrong shape":     `["a","r"]`,
		"missing access":  `{"refresh_token":"r"}`,
		"empty object":    `{}`,
		"truncated":       `{"access_token":"a","refr`,
		"null":            `null`,
		"number":          `42`,
		"empty string":    ``,
		"access not text": `{"access_token":12,"refresh_token":"r"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			mem := storage.NewMemory()
			if err := mem.Set(ctx, DefaultKey, raw); err != nil {
				t.Fatalf("seed: %v", err)
			}
			s := NewStore(mem, WithLogger(quietLogger()))
			if p, ok := s.Load(ctx); ok {
				t.Fatalf("expected absent, got %+v", p)
			}
		})
	}
}

func TestDegradedPair(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemory())
	if err := s.Save(ctx, Pair{AccessToken: "only-access"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	p, ok := s.Load(ctx)
	if !ok {
		t.Fatal("degraded pair should load")
	}
	if p.CanRefresh() {
		t.Fatal("degraded pair must not be refreshable")
	}
}

func TestSaveRejectsEmptyAccess(t *testing.T) {
	s := NewStore(storage.NewMemory())
	if err := s.Save(context.Background(), Pair{RefreshToken: "r"}); !errors.Is(err, ErrInvalidPair) {
		t.Fatalf("expected ErrInvalidPair, got %v", err)
	}
}

func TestLegacyAccessKey(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	if err := mem.Set(ctx, "token", "legacy-access"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := NewStore(mem, WithLegacyAccessKey("token"))

	p, ok := s.Load(ctx)
	if !ok || p.AccessToken != "legacy-access" || p.CanRefresh() {
		t.Fatalf("unexpected legacy load: %+v %v", p, ok)
	}

	if err := s.Save(ctx, Pair{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, found, _ := mem.Get(ctx, "token"); found {
		t.Fatal("legacy key should be removed by Save")
	}
}

type failingStore struct{ storage.Store }

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, storage.ErrUnavailable
}

func TestLoadBackendFailureIsAbsent(t *testing.T) {
	s := NewStore(failingStore{storage.NewMemory()}, WithLogger(quietLogger()))
	if _, ok := s.Load(context.Background()); ok {
		t.Fatal("backend failure should read as absent")
	}
}

func TestConcurrentReadersNeverSeeMixedPair(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemory())
	if err := s.Save(ctx, Pair{AccessToken: "a0", RefreshToken: "r0"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				n := fmt.Sprintf("%d-%d", w, i)
				_ = s.Save(ctx, Pair{AccessToken: "a" + n, RefreshToken: "r" + n})
			}
		}(w)
	}
	errs := make(chan string, 1)
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				p, ok := s.Load(ctx)
				if !ok || p.AccessToken[1:] != p.RefreshToken[1:] {
					select {
					case errs <- fmt.Sprintf("mixed pair %+v ok=%v", p, ok):
					default:
					}
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	if msg, ok := <-errs; ok {
		t.Fatal(msg)
	}
}

func TestAccessExpiry(t *testing.T) {
	m, err := jwtissue.NewManager(jwtissue.Config{
		AccessTTL:     5 * time.Minute,
		SigningMethod: jwtissue.MethodHS256,
		PrivateKey:    []byte("partner-secret-partner-secret-32"),
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	access, err := m.CreateAccess("user@company.com", "s1")
	if err != nil {
		t.Fatalf("create access: %v", err)
	}

	exp, ok := Pair{AccessToken: access}.AccessExpiry()
	if !ok {
		t.Fatal("expected expiry for jwt access token")
	}
	if d := time.Until(exp); d <= 0 || d > 5*time.Minute {
		t.Fatalf("unexpected expiry distance %v", d)
	}

	if _, ok := (Pair{AccessToken: "opaque"}).AccessExpiry(); ok {
		t.Fatal("opaque token should not report expiry")
	}
}
