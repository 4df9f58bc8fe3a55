package redisstore_test

import (
	"context"
	"testing"
	"time"

	"fxfolio-service/internal/application"
	"fxfolio-service/internal/domain"
	redisstore "fxfolio-service/internal/infrastructure/redis"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type countingFetcher struct {
	calls   int
	results []application.HistoryResult
}

func (f *countingFetcher) FetchWindow(_ context.Context, _ int, _ []domain.Instrument) ([]application.HistoryResult, error) {
	f.calls++
	return f.results, nil
}

func TestHistoryCache_SecondCallServedFromRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := &countingFetcher{results: []application.HistoryResult{
		{Instrument: domain.USDKRW, Status: application.StatusFull},
	}}
	cache := redisstore.NewHistoryCache(client, inner, time.Hour)

	ctx := context.Background()
	first, err := cache.FetchWindow(ctx, 12, []domain.Instrument{domain.USDKRW})
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, 1, inner.calls)

	second, err := cache.FetchWindow(ctx, 12, []domain.Instrument{domain.USDKRW})
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, inner.calls)
}

func TestHistoryCache_StaleResultsNotCached(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := &countingFetcher{results: []application.HistoryResult{
		{Instrument: domain.USDKRW, Status: application.StatusStale, Error: "provider down"},
	}}
	cache := redisstore.NewHistoryCache(client, inner, time.Hour)

	ctx := context.Background()
	_, err = cache.FetchWindow(ctx, 12, []domain.Instrument{domain.USDKRW})
	require.NoError(t, err)
	_, err = cache.FetchWindow(ctx, 12, []domain.Instrument{domain.USDKRW})
	require.NoError(t, err)
	require.Equal(t, 2, inner.calls)
}

func TestHistoryCache_NilClientPassesThrough(t *testing.T) {
	inner := &countingFetcher{results: []application.HistoryResult{
		{Instrument: domain.USDJPY, Status: application.StatusCached},
	}}
	cache := redisstore.NewHistoryCache(nil, inner, time.Hour)

	got, err := cache.FetchWindow(context.Background(), 6, []domain.Instrument{domain.USDJPY})
	require.NoError(t, err)
	require.Equal(t, inner.results, got)
	require.Equal(t, 1, inner.calls)
}
