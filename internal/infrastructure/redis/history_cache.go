package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"fxfolio-service/internal/application"
	"fxfolio-service/internal/domain"
	"fxfolio-service/internal/infrastructure/logx"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HistoryCache memoizes FetchWindow results in Redis for a short TTL so
// repeated dashboard loads within the window skip the provider entirely.
// With a nil client it is a transparent pass-through.
type HistoryCache struct {
	Client *redis.Client
	Inner  application.HistoryFetcher
	TTL    time.Duration
}

var _ application.HistoryFetcher = (*HistoryCache)(nil)

func NewHistoryCache(client *redis.Client, inner application.HistoryFetcher, ttl time.Duration) *HistoryCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &HistoryCache{Client: client, Inner: inner, TTL: ttl}
}

func (c *HistoryCache) FetchWindow(ctx context.Context, months int, instruments []domain.Instrument) ([]application.HistoryResult, error) {
	if c.Client == nil {
		return c.Inner.FetchWindow(ctx, months, instruments)
	}

	key := cacheKey(months, instruments)
	if data, err := c.Client.Get(ctx, key).Bytes(); err == nil {
		var cached []application.HistoryResult
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		// Corrupt entry: drop it and fall through to the inner fetcher.
		_ = c.Client.Del(ctx, key).Err()
	} else if err != redis.Nil {
		logx.L().Warn("history_cache.get_failed", zap.String("key", key), zap.Error(err))
	}

	results, err := c.Inner.FetchWindow(ctx, months, instruments)
	if err != nil {
		return nil, err
	}
	if cacheable(results) {
		if data, err := json.Marshal(results); err == nil {
			if err := c.Client.Set(ctx, key, data, c.TTL).Err(); err != nil {
				logx.L().Warn("history_cache.set_failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return results, nil
}

// cacheable rejects windows containing stale fallbacks; caching them would
// pin a provider outage past its recovery.
func cacheable(results []application.HistoryResult) bool {
	for _, r := range results {
		if r.Status == application.StatusStale || r.Error != "" {
			return false
		}
	}
	return true
}

func cacheKey(months int, instruments []domain.Instrument) string {
	names := make([]string, len(instruments))
	for i, inst := range instruments {
		names[i] = string(inst)
	}
	sort.Strings(names)
	return fmt.Sprintf("history:%d:%s", months, strings.Join(names, ","))
}
