package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/cookieauth"
	"github.com/MrEthical07/cookieauth/directory/redisdir"
	"github.com/MrEthical07/cookieauth/session"
)

// cookieJar satisfies session.CookieSource without building a request.
type cookieJar string

// Cookie returns the packed value for the session cookie name only.
func (c cookieJar) Cookie(name string) (*http.Cookie, error) {
	if name != session.CookieName {
		return nil, http.ErrNoCookie
	}
	return &http.Cookie{Name: name, Value: string(c)}, nil
}

func main() {
	var (
		users       = flag.Int("users", 2000, "number of users to register")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (resolve + repair)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "loadtest", "directory key prefix")
	)
	flag.Parse()

	if *users <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "users, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	dir := redisdir.New(client, *prefix)
	cfg := loadtestConfig()

	engine, err := cookieauth.New().WithConfig(cfg).WithDirectory(dir).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	// A second engine whose clock sits past the access lifetime repairs on every resolve.
	skew := cfg.JWT.AccessTTL + time.Second
	lateEngine, err := cookieauth.New().
		WithConfig(cfg).
		WithDirectory(dir).
		WithClock(func() time.Time { return time.Now().Add(skew) }).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}
	defer lateEngine.Close()

	fmt.Printf("registering %d users...\n", *users)
	startSeed := time.Now()
	cookies := make([]cookieJar, *users)
	for i := 0; i < *users; i++ {
		value, err := engine.Register(ctx, cookieauth.RegisterRequest{
			Email:           fmt.Sprintf("user-%d@loadtest.local", i),
			Password:        "loadtest-password",
			ConfirmPassword: "loadtest-password",
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "register failed: %v\n", err)
			os.Exit(1)
		}
		cookies[i] = cookieJar(value)
	}
	fmt.Printf("registered in %s\n", time.Since(startSeed).Round(time.Millisecond))

	resolveStats := runPhase(ctx, engine, cookies, *ops, *concurrency, 7919)
	repairStats := runPhase(ctx, lateEngine, cookies, *ops, *concurrency, 6151)

	fmt.Println("---- results ----")
	printStats("resolve", resolveStats)
	printStats("repair", repairStats)
	snap := lateEngine.MetricsSnapshot()
	fmt.Printf("repaired sessions: %d\n", snap.Counters[cookieauth.MetricSessionRepaired])
}

// loadtestConfig keeps Argon2 at its floor so registration does not dominate the run.
func loadtestConfig() cookieauth.Config {
	cfg := cookieauth.DefaultConfig()
	cfg.JWT.AccessSecret = "loadtest-access-secret-0123456789abcdef"
	cfg.JWT.RefreshSecret = "loadtest-refresh-secret-0123456789abcde"
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	return cfg
}

func runPhase(ctx context.Context, engine *cookieauth.Engine, cookies []cookieJar, ops, concurrency int, seed int64) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*seed))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(cookies))
				t0 := time.Now()
				_, err := engine.ResolveSession(ctx, cookies[idx])
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
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
