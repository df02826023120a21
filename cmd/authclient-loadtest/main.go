// Command authclient-loadtest drives many clients against in-process fake primary and
// partner services and reports submit and authorized-fetch latency.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/simstudio/authclient"
	"github.com/simstudio/authclient/partner"
	"github.com/simstudio/authclient/storage"
)

func main() {
	var (
		clients     = flag.Int("clients", 256, "number of independent clients")
		ops         = flag.Int("ops", 20000, "operations per phase (submit + fetch)")
		expireEvery = flag.Int("expire-every", 50, "partner expires access tokens every N fetches (0 disables)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *clients <= 0 || *ops <= 0 || *expireEvery < 0 {
		fmt.Fprintln(os.Stderr, "clients and ops must be > 0, expire-every must be >= 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		rdb     redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() {
			_ = rdb.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = rdb.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	fake, err := newFakeBackend(*expireEvery)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fake backend: %v\n", err)
		os.Exit(1)
	}
	defer fake.Close()

	pool, err := buildClients(*clients, rdb, fake)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build clients: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		for _, c := range pool {
			c.Close()
		}
	}()

	submitStats := runPhase(ctx, pool, *ops, func(ctx context.Context, c *authclient.Client, i int) error {
		_, err := c.Submit(ctx, authclient.Credentials{
			Email:    fmt.Sprintf("user-%d@loadtest.local", i%len(pool)),
			Password: "password123",
		})
		return err
	})
	fetchStats := runPhase(ctx, pool, *ops, func(ctx context.Context, c *authclient.Client, _ int) error {
		resp, err := c.AuthorizedFetch(ctx, partner.Request{Method: http.MethodGet, Path: "/me"})
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("status %d", resp.StatusCode)
		}
		return nil
	})

	var refreshes, retries uint64
	for _, c := range pool {
		snap := c.MetricsSnapshot()
		refreshes += snap.Counters[authclient.MetricRefreshSuccess]
		retries += snap.Counters[authclient.MetricRetry]
	}

	fmt.Println("---- results ----")
	printStats("submit", submitStats)
	printStats("fetch", fetchStats)
	fmt.Printf("partner: logins=%d refreshes=%d (client-side %d) retries=%d\n",
		fake.logins.Load(), fake.refreshes.Load(), refreshes, retries)
}

func buildClients(n int, rdb redis.UniversalClient, fake *fakeBackend) ([]*authclient.Client, error) {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	nav := authclient.NavigatorFunc(func(context.Context, string) error { return nil })
	transport := &http.Client{
		Timeout:   5 * time.Second,
		Transport: &http.Transport{MaxIdleConnsPerHost: n},
	}

	pool := make([]*authclient.Client, 0, n)
	for i := 0; i < n; i++ {
		cfg := authclient.DefaultConfig()
		cfg.Partner.BaseURL = fake.partnerURL()
		cfg.Storage.Namespace = fmt.Sprintf("lt-%d", i)
		cfg.Throttle.Enabled = true
		cfg.Throttle.MaxAttempts = 1 << 20

		c, err := authclient.New().
			WithConfig(cfg).
			WithRedis(rdb).
			WithDurableStore(storage.NewMemory()).
			WithPrimary(fake).
			WithNavigator(nav).
			WithHTTPClient(transport).
			WithLogger(quiet).
			Build()
		if err != nil {
			return nil, err
		}
		pool = append(pool, c)
	}
	return pool, nil
}

// runPhase spreads ops across the pool. Each client runs one operation at a time, so a
// worker owns exactly one client.
func runPhase(ctx context.Context, pool []*authclient.Client, ops int, op func(context.Context, *authclient.Client, int) error) phaseStats {
	var (
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := range pool {
		client := pool[w]
		g.Go(func() error {
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return nil
				}
				t0 := time.Now()
				err := op(gctx, client, i)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		})
	}
	_ = g.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
