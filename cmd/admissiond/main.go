package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"vectorgate/internal/admit"
	"vectorgate/internal/api"
	"vectorgate/internal/quota"
	"vectorgate/internal/store"
	"vectorgate/internal/store/memstore"
	"vectorgate/internal/store/redisstore"
	"vectorgate/pkg/admission"
)

// main launches admissiond.
func main() {
	os.Exit(run())
}

// run executes admissiond and returns an exit code.
func run() int {
	configPath := flag.String("config", "config.yaml", "path to admissiond config")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}

	var counterStore store.Store
	var closeStore func()
	switch cfg.Server.Store {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  millis(cfg.Redis.DialTimeoutMs),
			ReadTimeout:  millis(cfg.Redis.ReadTimeoutMs),
			WriteTimeout: millis(cfg.Redis.WriteTimeoutMs),
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "redis error: %v\n", err)
			return 1
		}
		counterStore = redisstore.New(rdb)
		closeStore = func() {
			_ = rdb.Close()
		}
	default:
		counterStore = memstore.New(nil)
	}

	for _, q := range cfg.Quotas.Tenants {
		if err := quota.ValidateQuota(q); err != nil {
			fmt.Fprintf(os.Stderr, "quota error: %v\n", err)
			return 1
		}
	}
	source := quota.NewStaticSource(cfg.Quotas.Tenants)
	resolver, err := quota.NewResolver(quota.Config{
		Source:       source,
		TierDefaults: tierDefaults(cfg),
		DefaultTier:  admission.Tier(cfg.Admission.DefaultTier),
		Costs:        cfg.Quotas.Costs,
		Overrides:    operationOverrides(cfg),
		CacheTTL:     millis(cfg.Admission.QuotaCacheTTLMs),
		Now:          time.Now,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "quota error: %v\n", err)
		return 1
	}

	gate, err := admit.NewService(admit.ServiceConfig{
		Store:        counterStore,
		Source:       source,
		Resolver:     resolver,
		Fallback:     admit.FallbackPolicy(cfg.Admission.FallbackPolicy),
		StoreTimeout: millis(cfg.Admission.StoreTimeoutMs),
		Now:          time.Now,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "admission error: %v\n", err)
		return 1
	}

	server := &http.Server{
		Addr: cfg.Server.ListenAddr,
		Handler: api.NewHandler(api.Config{
			Gate:   gate,
			Quotas: source,
			Now:    time.Now,
		}),
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	if closeStore != nil {
		closeStore()
	}
	return 0
}
