package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/meliscope/meliscope-go/internal/models"
)

// ReportCacheStats tracks cache performance counters.
type ReportCacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	mu     sync.RWMutex
}

// RedisReportCache caches computed market reports in Redis keyed by
// (query, official-store filter). A cache failure is never fatal; callers
// fall through to a fresh analysis.
type RedisReportCache struct {
	redis  *redis.Client
	ttl    time.Duration
	stats  *ReportCacheStats
	prefix string
	logger *logrus.Logger
}

func NewRedisReportCache(redisClient *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisReportCache {
	return &RedisReportCache{
		redis:  redisClient,
		ttl:    ttl,
		stats:  &ReportCacheStats{},
		prefix: "report:",
		logger: logger,
	}
}

func (c *RedisReportCache) key(query string, officialOnly bool) string {
	return fmt.Sprintf("%s%s:%t", c.prefix, query, officialOnly)
}

// Get retrieves a cached report, returning ok=false on miss or any error.
func (c *RedisReportCache) Get(ctx context.Context, query string, officialOnly bool) (*models.MarketAnalysis, bool) {
	data, err := c.redis.Get(ctx, c.key(query, officialOnly)).Result()
	if err == redis.Nil {
		c.miss()
		return nil, false
	}
	if err != nil {
		c.logger.WithField("query", query).WithError(err).Warn("Report cache read failed")
		c.miss()
		return nil, false
	}

	var report models.MarketAnalysis
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		c.logger.WithField("query", query).WithError(err).Warn("Cached report is not decodable, treating as miss")
		c.miss()
		return nil, false
	}

	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
	return &report, true
}

// Set stores a report under the configured TTL.
func (c *RedisReportCache) Set(ctx context.Context, report *models.MarketAnalysis) {
	payload, err := json.Marshal(report)
	if err != nil {
		c.logger.WithField("query", report.Query).WithError(err).Warn("Failed to serialize report for cache")
		return
	}

	if err := c.redis.Set(ctx, c.key(report.Query, report.OfficialStoresOnly), payload, c.ttl).Err(); err != nil {
		c.logger.WithField("query", report.Query).WithError(err).Warn("Report cache write failed")
		return
	}

	c.stats.mu.Lock()
	c.stats.Sets++
	c.stats.mu.Unlock()
}

// Stats returns a copy of the cache counters.
func (c *RedisReportCache) Stats() ReportCacheStats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()
	return ReportCacheStats{Hits: c.stats.Hits, Misses: c.stats.Misses, Sets: c.stats.Sets}
}

func (c *RedisReportCache) miss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
}
