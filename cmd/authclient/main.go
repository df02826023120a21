// Command authclient signs a user in from the terminal: it authenticates against the
// primary account service, bootstraps the partner session and optionally calls a partner
// endpoint with the stored tokens.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go-simpler.org/env"

	"github.com/simstudio/authclient"
	promexport "github.com/simstudio/authclient/metrics/export/prometheus"
	"github.com/simstudio/authclient/partner"
	"github.com/simstudio/authclient/primary"
	"github.com/simstudio/authclient/storage"
)

type processConfig struct {
	LogLevel       string        `env:"LOG_LEVEL" default:"info"`
	LogFormat      string        `env:"LOG_FORMAT" default:"text"`
	PrimaryBaseURL string        `env:"AUTHCLIENT_PRIMARY_BASE_URL"`
	PrimaryOrigin  string        `env:"AUTHCLIENT_PRIMARY_ORIGIN"`
	PrimaryTimeout time.Duration `env:"AUTHCLIENT_PRIMARY_TIMEOUT" default:"15s"`
	SQLitePath     string        `env:"AUTHCLIENT_SQLITE_PATH" default:"authclient.db"`
	RedisAddr      string        `env:"REDIS_ADDR"`
	Password       string        `env:"AUTHCLIENT_PASSWORD"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("authclient", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		email        = fs.String("email", "", "account email")
		password     = fs.String("password", "", "account password (AUTHCLIENT_PASSWORD if empty)")
		sealedEmail  = fs.String("sealed-email", "", "encrypted email from a sign-in link")
		sealedPass   = fs.String("sealed-password", "", "encrypted password from a sign-in link")
		fetchPath    = fs.String("fetch", "", "partner API path to GET after signing in")
		signOut      = fs.Bool("sign-out", false, "clear the stored partner session and exit")
		printMetrics = fs.Bool("metrics", false, "print metrics in Prometheus text format on exit")
		dotenv       = fs.String("env-file", ".env", "optional dotenv file")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := authclient.LoadConfigFromEnv(*dotenv)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 2
	}
	var pc processConfig
	if err := env.Load(&pc, nil); err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 2
	}

	logger := newLogger(stderr, pc.LogLevel, pc.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, cleanup, err := build(cfg, pc, logger, stdout)
	if err != nil {
		logger.Error("build client", slog.Any("error", err))
		return 1
	}
	defer cleanup()

	if *printMetrics {
		defer dumpMetrics(client, stdout)
	}

	if *signOut {
		if err := client.SignOut(ctx); err != nil {
			logger.Error("sign out", slog.Any("error", err))
			return 1
		}
		fmt.Fprintln(stdout, "signed out")
		return 0
	}

	if *password == "" {
		*password = pc.Password
	}

	var res authclient.SubmitResult
	switch {
	case *sealedEmail != "" || *sealedPass != "":
		res, err = client.SubmitEncrypted(ctx, authclient.EncryptedCredentials{Email: *sealedEmail, Password: *sealedPass})
	default:
		res, err = client.Submit(ctx, authclient.Credentials{Email: *email, Password: *password})
	}
	report(stdout, res)
	if err != nil {
		logger.Warn("sign-in did not complete", slog.Any("error", err))
		return 1
	}
	if res.Route == "" {
		return 1
	}

	if *fetchPath != "" && res.Route == cfg.Routes.Workspace {
		if err := fetch(ctx, client, *fetchPath, stdout); err != nil {
			logger.Error("partner request", slog.Any("error", err))
			return 1
		}
	}
	return 0
}

func build(cfg authclient.Config, pc processConfig, logger *slog.Logger, stdout io.Writer) (*authclient.Client, func(), error) {
	if pc.PrimaryBaseURL == "" {
		return nil, nil, errors.New("AUTHCLIENT_PRIMARY_BASE_URL is required")
	}
	provider, err := primary.New(primary.Config{
		BaseURL: pc.PrimaryBaseURL,
		Origin:  pc.PrimaryOrigin,
		Timeout: pc.PrimaryTimeout,
	}, primary.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}

	nav := authclient.NavigatorFunc(func(ctx context.Context, route string) error {
		logger.InfoContext(ctx, "navigate", slog.String("route", route))
		fmt.Fprintf(stdout, "next: %s\n", route)
		return nil
	})

	b := authclient.New().
		WithConfig(cfg).
		WithPrimary(provider).
		WithNavigator(nav).
		WithLogger(logger)

	var closers []func()
	if pc.RedisAddr != "" {
		rdb := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{pc.RedisAddr}})
		b.WithRedis(rdb)
		closers = append(closers, func() { _ = rdb.Close() })
	} else {
		if cfg.Throttle.Enabled {
			return nil, nil, errors.New("throttle requires REDIS_ADDR")
		}
		db, err := storage.OpenSQLite(pc.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		b.WithDurableStore(db)
		closers = append(closers, func() { _ = db.Close() })
	}
	if cfg.Audit.Enabled {
		b.WithAuditSink(authclient.NewJSONWriterSink(os.Stderr))
	}

	client, err := b.Build()
	if err != nil {
		for _, c := range closers {
			c()
		}
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return client, cleanup, nil
}

func report(w io.Writer, res authclient.SubmitResult) {
	fmt.Fprintf(w, "state: %s\n", res.State)
	for _, m := range res.EmailErrors {
		fmt.Fprintf(w, "email: %s\n", m)
	}
	for _, m := range res.PasswordErrors {
		fmt.Fprintf(w, "password: %s\n", m)
	}
}

func fetch(ctx context.Context, client *authclient.Client, path string, w io.Writer) error {
	resp, err := client.AuthorizedFetch(ctx, partner.Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	fmt.Fprintf(w, "%s %s\n", resp.Status, path)
	_, err = io.Copy(w, io.LimitReader(resp.Body, 1<<20))
	return err
}

func dumpMetrics(client *authclient.Client, w io.Writer) {
	rec := httptest.NewRecorder()
	promexport.NewExporter(client).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	_, _ = io.Copy(w, rec.Body)
}
