package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/ayalabs/ayabridge/internal/circuitbreaker"
	"github.com/ayalabs/ayabridge/internal/logging"
	"github.com/ayalabs/ayabridge/internal/metrics"
)

// DefaultTTL is the inference result cache time-to-live.
const DefaultTTL = 30 * time.Second

const breakerThreshold = 3

// Cached wraps a Provider with a TTL result cache and a per-model circuit
// breaker. Hits bypass the provider and replay the stored result bytes, so
// repeated identical requests within the TTL are byte-identical. Provider
// failures are absorbed: the fixed fallback result is returned and cached
// for the TTL, so a failing provider is not hammered. Infer never errors.
type Cached struct {
	provider Provider
	cache    *bigcache.BigCache
	breaker  *circuitbreaker.Breaker
}

// NewCached builds the caching wrapper. Entries expire after ttl and are
// recomputed on the next request rather than swept proactively.
func NewCached(provider Provider, ttl time.Duration) (*Cached, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	cfg := bigcache.DefaultConfig(ttl)
	cfg.CleanWindow = 0 // lazy expiry: stale entries are replaced on access
	cfg.Verbose = false

	cache, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("create inference cache: %w", err)
	}

	return &Cached{
		provider: provider,
		cache:    cache,
		breaker:  circuitbreaker.New(breakerThreshold, ttl),
	}, nil
}

// Infer returns the cached result for req when present and fresh, otherwise
// consults the provider (or the fallback) and caches whatever it returns.
func (c *Cached) Infer(ctx context.Context, req Request) (Result, error) {
	key, err := json.Marshal(req) // canonical: struct field order is fixed
	if err != nil {
		return Result{}, fmt.Errorf("marshal inference request: %w", err)
	}

	if data, info, err := c.cache.GetWithInfo(string(key)); err == nil && info.EntryStatus != bigcache.Expired {
		var res Result
		if json.Unmarshal(data, &res) == nil {
			metrics.InferenceCacheHits.Inc()
			logging.L(ctx).Debug("inference cache hit", "model", req.Model)
			return res, nil
		}
	}
	metrics.InferenceCacheMisses.Inc()

	res := c.evaluate(ctx, req)

	if data, err := json.Marshal(res); err == nil {
		_ = c.cache.Set(string(key), data)
	}
	return res, nil
}

func (c *Cached) evaluate(ctx context.Context, req Request) Result {
	if !c.breaker.Allow(req.Model) {
		logging.L(ctx).Warn("inference circuit open, using fallback", "model", req.Model)
		return FallbackResult()
	}

	res, err := c.provider.Infer(ctx, req)
	if err != nil {
		c.breaker.RecordFailure(req.Model)
		metrics.ProviderFailuresTotal.WithLabelValues("inference").Inc()
		logging.L(ctx).Warn("inference failed, using fallback", "model", req.Model, "error", err)
		return FallbackResult()
	}

	c.breaker.RecordSuccess(req.Model)
	return res
}
