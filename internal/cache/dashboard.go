package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dashboardKeyPrefix = "dashboard"
	scanBatchSize      = 100
	defaultTTL         = 5 * time.Minute
)

// DashboardCache memoizes computed dashboard payloads per view and timeframe.
// Order mutations call InvalidateAll so stale aggregates never outlive a write
// by more than the in-flight requests.
type DashboardCache interface {
	Get(ctx context.Context, view, timeframe string, out any) (bool, error)
	Set(ctx context.Context, view, timeframe string, value any) error
	InvalidateAll(ctx context.Context) error
	Close() error
}

type redisDashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopDashboardCache struct{}

// NewDashboardCache connects to redis when a URL is configured and falls back
// to a no-op cache otherwise, so the service runs without redis in dev.
func NewDashboardCache(redisURL string, ttl time.Duration) (DashboardCache, error) {
	if redisURL == "" {
		return &noopDashboardCache{}, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &redisDashboardCache{client: client, ttl: ttl}, nil
}

func NewNoopDashboardCache() DashboardCache {
	return &noopDashboardCache{}
}

func dashboardKey(view, timeframe string) string {
	return fmt.Sprintf("%s:%s:%s", dashboardKeyPrefix, view, timeframe)
}

func (c *redisDashboardCache) Get(ctx context.Context, view, timeframe string, out any) (bool, error) {
	payload, err := c.client.Get(ctx, dashboardKey(view, timeframe)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("decode dashboard cache: %w", err)
	}
	return true, nil
}

func (c *redisDashboardCache) Set(ctx context.Context, view, timeframe string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode dashboard cache: %w", err)
	}
	if err := c.client.Set(ctx, dashboardKey(view, timeframe), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisDashboardCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, dashboardKeyPrefix+":*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (c *redisDashboardCache) Close() error {
	return c.client.Close()
}

func (noopDashboardCache) Get(context.Context, string, string, any) (bool, error) { return false, nil }
func (noopDashboardCache) Set(context.Context, string, string, any) error         { return nil }
func (noopDashboardCache) InvalidateAll(context.Context) error                    { return nil }
func (noopDashboardCache) Close() error                                           { return nil }
