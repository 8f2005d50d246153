package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meliscope/meliscope-go/internal/models"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisReportCache(client, ttl, logrus.New()), mr
}

func sampleReport(query string, officialOnly bool) *models.MarketAnalysis {
	return &models.MarketAnalysis{
		ID:                 "4f9c0a9e-0000-0000-0000-000000000001",
		Query:              query,
		OfficialStoresOnly: officialOnly,
		TotalListings:      2,
		AveragePrice:       decimal.NewFromFloat(749.99),
		CompetitionLevel:   models.CompetitionLow,
		GeneratedAt:        time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC),
	}
}

func TestReportCache_SetAndGet(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	report := sampleReport("iphone", false)
	cache.Set(ctx, report)

	cached, ok := cache.Get(ctx, "iphone", false)
	require.True(t, ok)
	assert.Equal(t, report.ID, cached.ID)
	assert.Equal(t, "iphone", cached.Query)
	assert.True(t, cached.AveragePrice.Equal(decimal.NewFromFloat(749.99)))

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(0), stats.Misses)
}

func TestReportCache_MissOnUnknownKey(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)

	_, ok := cache.Get(context.Background(), "unknown", false)
	assert.False(t, ok)
	assert.Equal(t, int64(1), cache.Stats().Misses)
}

func TestReportCache_FilterIsPartOfTheKey(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	cache.Set(ctx, sampleReport("iphone", true))

	_, ok := cache.Get(ctx, "iphone", false)
	assert.False(t, ok, "filtered and unfiltered reports must not collide")

	cached, ok := cache.Get(ctx, "iphone", true)
	require.True(t, ok)
	assert.True(t, cached.OfficialStoresOnly)
}

func TestReportCache_Expiry(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	cache.Set(ctx, sampleReport("iphone", false))
	mr.FastForward(2 * time.Minute)

	_, ok := cache.Get(ctx, "iphone", false)
	assert.False(t, ok)
}

func TestReportCache_CorruptEntryIsAMiss(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)

	require.NoError(t, mr.Set("report:iphone:false", "{not json"))

	_, ok := cache.Get(context.Background(), "iphone", false)
	assert.False(t, ok)
	assert.Equal(t, int64(1), cache.Stats().Misses)
}

func TestReportCache_ServerDownDegrades(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	mr.Close()

	_, ok := cache.Get(context.Background(), "iphone", false)
	assert.False(t, ok, "an unreachable cache behaves like a miss")

	// Writes are best-effort too.
	cache.Set(context.Background(), sampleReport("iphone", false))
	assert.Equal(t, int64(0), cache.Stats().Sets)
}
