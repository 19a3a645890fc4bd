// Command admission-loadtest runs a synthetic load test against admissiond.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"vectorgate/pkg/admission"
	"vectorgate/pkg/admission/httpclient"
)

// config captures command-line configuration for the load test.
type config struct {
	BaseURL        string
	Duration       time.Duration
	Concurrency    int
	Tenants        []string
	Operations     []string
	QuotasPath     string
	RequestTimeout time.Duration
}

// loadtestStats aggregates counters and latency samples.
type loadtestStats struct {
	checkCount    uint64
	allowedCount  uint64
	deniedCount   uint64
	degradedCount uint64
	errorCount    uint64

	mu        sync.Mutex
	latencies []int64
}

func main() {
	cfg := parseConfig()
	if err := cfg.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	client := httpclient.NewWithTimeout(cfg.BaseURL, cfg.RequestTimeout)
	if cfg.QuotasPath != "" {
		if err := seedQuotas(client, cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	stats := runLoad(ctx, client, cfg)
	printSummary(cfg, stats)
}

// parseConfig reads flags and builds a config.
func parseConfig() config {
	var cfg config
	var tenants, operations string
	flag.StringVar(&cfg.BaseURL, "base-url", "http://localhost:8080", "admissiond base URL")
	flag.DurationVar(&cfg.Duration, "duration", 30*time.Second, "test duration")
	flag.IntVar(&cfg.Concurrency, "concurrency", 200, "concurrent workers")
	flag.StringVar(&tenants, "tenants", "tenant-a,tenant-b", "comma-separated tenant ids")
	flag.StringVar(&operations, "operations", "search,upsert,delete", "comma-separated operation names")
	flag.StringVar(&cfg.QuotasPath, "quotas", "", "path to quotas JSON file to seed")
	flag.DurationVar(&cfg.RequestTimeout, "request-timeout", 2*time.Second, "per-request timeout")
	flag.Parse()

	cfg.Tenants = splitList(tenants)
	cfg.Operations = splitList(operations)
	return cfg
}

// validate ensures the configuration is usable.
func (c config) validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request-timeout must be positive")
	}
	if len(c.Tenants) == 0 {
		return fmt.Errorf("at least one tenant is required")
	}
	if len(c.Operations) == 0 {
		return fmt.Errorf("at least one operation is required")
	}
	return nil
}

// seedQuotas applies quota records from a JSON file to the running server.
func seedQuotas(client *httpclient.Client, cfg config) error {
	data, err := os.ReadFile(cfg.QuotasPath)
	if err != nil {
		return err
	}
	var quotas []admission.TenantQuota
	if err := json.Unmarshal(data, &quotas); err != nil {
		return err
	}
	for _, q := range quotas {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		err := client.UpdateQuota(ctx, q)
		cancel()
		if err != nil {
			return fmt.Errorf("seed quota %s: %w", q.TenantID, err)
		}
	}
	return nil
}

// runLoad executes the concurrent load until the context expires.
func runLoad(ctx context.Context, gate admission.Gate, cfg config) *loadtestStats {
	stats := &loadtestStats{latencies: make([]int64, 0, cfg.Concurrency*16)}
	var wg sync.WaitGroup
	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				tenant := cfg.Tenants[rng.Intn(len(cfg.Tenants))]
				operation := cfg.Operations[rng.Intn(len(cfg.Operations))]
				start := time.Now()
				checkCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
				res, err := gate.Check(checkCtx, tenant, operation)
				cancel()
				stats.recordLatency(time.Since(start))
				if err != nil {
					atomic.AddUint64(&stats.errorCount, 1)
					continue
				}
				atomic.AddUint64(&stats.checkCount, 1)
				if res.Degraded {
					atomic.AddUint64(&stats.degradedCount, 1)
				}
				if res.Allowed {
					atomic.AddUint64(&stats.allowedCount, 1)
				} else {
					atomic.AddUint64(&stats.deniedCount, 1)
				}
			}
		}(int64(i + 1))
	}
	wg.Wait()
	return stats
}

// printSummary renders load test metrics to stdout.
func printSummary(cfg config, stats *loadtestStats) {
	elapsed := cfg.Duration.Seconds()
	checks := atomic.LoadUint64(&stats.checkCount)
	allowed := atomic.LoadUint64(&stats.allowedCount)
	denied := atomic.LoadUint64(&stats.deniedCount)
	degraded := atomic.LoadUint64(&stats.degradedCount)
	errors := atomic.LoadUint64(&stats.errorCount)

	fmt.Println("admission load test summary")
	fmt.Printf("duration: %s concurrency: %d tenants: %d operations: %d\n",
		cfg.Duration, cfg.Concurrency, len(cfg.Tenants), len(cfg.Operations))
	fmt.Printf("checks/sec: %.2f\n", float64(checks)/elapsed)
	fmt.Printf("allowed: %d denied: %d degraded: %d errors: %d\n", allowed, denied, degraded, errors)
	fmt.Printf("check latency p50=%s p95=%s p99=%s\n",
		percentileDuration(stats.latencies, 0.50),
		percentileDuration(stats.latencies, 0.95),
		percentileDuration(stats.latencies, 0.99),
	)
}

// recordLatency appends a check latency sample.
func (s *loadtestStats) recordLatency(d time.Duration) {
	s.mu.Lock()
	s.latencies = append(s.latencies, d.Nanoseconds())
	s.mu.Unlock()
}

// percentileDuration computes a duration percentile for samples in nanoseconds.
func percentileDuration(samples []int64, p float64) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	copySamples := append([]int64(nil), samples...)
	sort.Slice(copySamples, func(i, j int) bool { return copySamples[i] < copySamples[j] })
	if p <= 0 {
		return time.Duration(copySamples[0])
	}
	if p >= 1 {
		return time.Duration(copySamples[len(copySamples)-1])
	}
	pos := int(float64(len(copySamples)-1) * p)
	return time.Duration(copySamples[pos])
}

// splitList parses a comma-separated flag value.
func splitList(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	return out
}
