// Command portal-loadtest measures snapshot persistence throughput against
// Redis: how fast many session stores can save and restore {user, token}.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/portalAuth/role"
	"github.com/MrEthical07/portalAuth/session"
)

func main() {
	var (
		namespaces  = flag.Int("namespaces", 20000, "number of persisted sessions to seed")
		concurrency = flag.Int("concurrency", 128, "number of concurrent workers")
		ops         = flag.Int("ops", 100000, "operations per phase (save + load)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, PORTAL_REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "ps", "snapshot key prefix")
		ttl         = flag.Duration("ttl", 24*time.Hour, "snapshot TTL")
	)
	flag.Parse()

	if *namespaces <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "namespaces, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("PORTAL_REDIS_ADDR")
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
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	store := session.NewStore(client, *prefix, *ttl)

	names := make([]string, *namespaces)
	fmt.Printf("seeding %d snapshots...\n", *namespaces)
	startSeed := time.Now()
	for i := range names {
		names[i] = fmt.Sprintf("user-storage-%d", i)
		if err := store.Save(ctx, names[i], buildSnapshot(i)); err != nil {
			fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	saveStats := runPhase(*ops, *concurrency, func(r *rand.Rand, i int) error {
		idx := r.Intn(len(names))
		return store.Save(ctx, names[idx], buildSnapshot(idx+i))
	})
	loadStats := runPhase(*ops, *concurrency, func(r *rand.Rand, _ int) error {
		snap, err := store.Load(ctx, names[r.Intn(len(names))])
		if err != nil {
			return err
		}
		if snap.Empty() {
			return errors.New("empty snapshot")
		}
		return nil
	})

	fmt.Println("---- results ----")
	printStats("save", saveStats)
	printStats("load", loadStats)
}

// runPhase spreads ops calls of op across concurrency workers.
func runPhase(ops, concurrency int, op func(r *rand.Rand, i int) error) phaseStats {
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
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r, i)
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
	return computeStats(time.Since(start), latencies, failures)
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
	return samples[(len(samples)-1)*p/100]
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

var roles = [...]role.Role{role.Admin, role.Studio, role.Guest}

func buildSnapshot(i int) *session.Snapshot {
	now := time.Now().UTC()
	return &session.Snapshot{
		Token: "load-" + uuid.NewString(),
		User: &session.User{
			ID:          fmt.Sprintf("u-%d", i),
			Email:       fmt.Sprintf("studio%d@portal.test", i),
			DisplayName: fmt.Sprintf("Studio %d", i),
			Role:        roles[i%len(roles)],
			Plan:        "free",
			Credits:     int64(i % 500),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		SavedAt: now,
	}
}
