package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-scanner/internal/logger"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"go.uber.org/zap"
)

// DefaultCacheTTL keeps cached series for one poll period of a daily scanner.
const DefaultCacheTTL = 12 * time.Hour

// CacheOptions configures a RedisCache.
type CacheOptions struct {
	TTL time.Duration
	// Lookback and AsOf are the window of the wrapped source. They are part of every
	// key so sources with different windows never share entries.
	Lookback int
	AsOf     optional.Option[time.Time]
}

// RedisCache caches the series of another SeriesSource in Redis, one key per
// symbol, frequency and source window. Cache failures are logged and fall
// through to the underlying source.
type RedisCache struct {
	client redis.Cmdable
	next   SeriesSource
	ttl    time.Duration
	prefix string
	logger *logger.Logger
}

// NewRedisCache wraps next with a Redis cache.
func NewRedisCache(client redis.Cmdable, next SeriesSource, options CacheOptions, log *logger.Logger) *RedisCache {
	if options.TTL <= 0 {
		options.TTL = DefaultCacheTTL
	}

	if options.Lookback <= 0 {
		options.Lookback = DefaultLookback
	}

	asOf := "latest"
	if options.AsOf.IsSome() {
		asOf = options.AsOf.Unwrap().UTC().Format(time.RFC3339)
	}

	return &RedisCache{
		client: client,
		next:   next,
		ttl:    options.TTL,
		prefix: fmt.Sprintf("argo-scanner:series:%d:%s:", options.Lookback, asOf),
		logger: log.Named("redis-cache"),
	}
}

// GetSeries implements SeriesSource.
func (c *RedisCache) GetSeries(ctx context.Context, symbols []string, frequency types.Frequency) (map[string]types.Series, []string, error) {
	out := make(map[string]types.Series, len(symbols))
	misses := make([]string, 0, len(symbols))

	for _, symbol := range symbols {
		series, ok := c.lookup(ctx, symbol, frequency)
		if !ok {
			misses = append(misses, symbol)

			continue
		}

		out[symbol] = series
	}

	if len(misses) == 0 {
		return out, []string{}, nil
	}

	fetched, missing, err := c.next.GetSeries(ctx, misses, frequency)
	if err != nil {
		return nil, nil, err
	}

	for symbol, series := range fetched {
		out[symbol] = series
		c.store(ctx, symbol, frequency, series)
	}

	return out, missing, nil
}

// Invalidate drops the cached series of the given symbols for both frequencies.
func (c *RedisCache) Invalidate(ctx context.Context, symbols ...string) error {
	keys := make([]string, 0, len(symbols)*2)
	for _, symbol := range symbols {
		keys = append(keys, c.key(symbol, types.FrequencyDaily), c.key(symbol, types.FrequencyWeekly))
	}

	if len(keys) == 0 {
		return nil
	}

	return c.client.Del(ctx, keys...).Err()
}

func (c *RedisCache) key(symbol string, frequency types.Frequency) string {
	return fmt.Sprintf("%s%s:%s", c.prefix, frequency, symbol)
}

func (c *RedisCache) lookup(ctx context.Context, symbol string, frequency types.Frequency) (types.Series, bool) {
	data, err := c.client.Get(ctx, c.key(symbol, frequency)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Cache lookup failed", zap.String("symbol", symbol), zap.Error(err))
		}

		return nil, false
	}

	var records []barRecord
	if err := json.Unmarshal(data, &records); err != nil {
		c.logger.Warn("Discarding unreadable cache entry", zap.String("symbol", symbol), zap.Error(err))

		return nil, false
	}

	return fromRecords(records), true
}

func (c *RedisCache) store(ctx context.Context, symbol string, frequency types.Frequency, series types.Series) {
	data, err := json.Marshal(toRecords(series))
	if err != nil {
		c.logger.Warn("Failed to encode series", zap.String("symbol", symbol), zap.Error(err))

		return
	}

	if err := c.client.Set(ctx, c.key(symbol, frequency), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Cache store failed", zap.String("symbol", symbol), zap.Error(err))
	}
}
