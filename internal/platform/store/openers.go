package store

import (
	"context"
	"fmt"
	"time"

	"cardrelay/internal/platform/store/pg"

	"github.com/redis/go-redis/v9"
)

// retry knobs for boot-time pings, swapped in tests
var (
	backoffStart   = 150 * time.Millisecond
	backoffCeiling = 2 * time.Second
	sleep          = time.Sleep
)

// openPG opens pg and wraps it with our sql adapter
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
		AppName:  cfg.AppName,
	}, tracer, nil)
	if err != nil {
		return nil, err
	}

	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = 20
	}
	pingTimeout := cfg.PG.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}

	err = pingWithBackoff(ctx, attempts, pingTimeout, p.Pool.Ping)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return newPGAdapter(p), nil
}

// openRedis dials redis and verifies it answers PING
func openRedis(ctx context.Context, cfg Config) (redis.UniversalClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:       cfg.RDS.Addr,
		Password:   cfg.RDS.Password,
		DB:         cfg.RDS.DB,
		ClientName: cfg.AppName,
	})
	err := pingWithBackoff(ctx, 5, 2*time.Second, func(c context.Context) error {
		return rdb.Ping(c).Err()
	})
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	return rdb, nil
}

// pingWithBackoff retries ping with exponential backoff until it succeeds,
// ctx ends, or attempts run out
func pingWithBackoff(ctx context.Context, attempts int, timeout time.Duration, ping func(context.Context) error) error {
	var lastErr error
	backoff := backoffStart
	for i := 0; i < attempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, timeout)
		lastErr = ping(toCtx)
		cancel()
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sleep(backoff)
		backoff = min(backoff*2, backoffCeiling)
	}
	return fmt.Errorf("ping failed after %d attempts: %w", attempts, lastErr)
}
