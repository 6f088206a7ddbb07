// Package signal provides cached market-signal analysis. Concurrent
// requests for the same cache key are collapsed into a single analyzer
// call; results are shared for the cache TTL.
package signal

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/quantfx/fx-risk-api/internal/metrics"
)

// Analyzer produces a trade signal from a market snapshot. The OpenRouter
// client is the production implementation.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (Result, error)
}

// Service coordinates the cache, the in-flight deduplication and the analyzer
type Service struct {
	cache    *Cache
	analyzer Analyzer
	group    singleflight.Group
	log      zerolog.Logger
}

// NewService creates a new signal service
func NewService(cache *Cache, analyzer Analyzer, log zerolog.Logger) *Service {
	return &Service{
		cache:    cache,
		analyzer: analyzer,
		log:      log.With().Str("component", "signal_service").Logger(),
	}
}

// Analyze resolves a signal for the request's cache key: from cache when
// fresh, otherwise through exactly one analyzer call no matter how many
// requests arrive concurrently for the same key.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (Result, error) {
	if err := req.CacheKey.Validate(); err != nil {
		return Result{}, err
	}

	key := req.CacheKey.String()
	log := s.log.With().Str("cache_key", key).Logger()

	if cached, ok := s.cache.Get(key); ok {
		log.Info().Msg("Cache hit")
		metrics.ObserveSignalCache("hit")
		return cached, nil
	}

	value, err, shared := s.group.Do(key, func() (interface{}, error) {
		// Another caller may have populated the cache while we queued.
		if cached, ok := s.cache.Get(key); ok {
			return cached, nil
		}

		log.Info().Msg("Cache miss, calling analyzer")
		result, err := s.analyzer.Analyze(ctx, req)
		if err != nil {
			return Result{}, fmt.Errorf("analyzer call failed: %w", err)
		}

		result.stamp(key, time.Now())
		s.cache.Set(key, result)
		log.Info().Str("signal", result.Signal).Msg("Result cached")
		return result, nil
	})
	if err != nil {
		log.Error().Err(err).Msg("Signal analysis failed")
		return Result{}, err
	}

	if shared {
		metrics.ObserveSignalCache("shared")
	} else {
		metrics.ObserveSignalCache("miss")
	}
	return value.(Result), nil
}

// SweepCache drops expired entries; wired as a background job
func (s *Service) SweepCache() error {
	removed := s.cache.Sweep()
	if removed > 0 {
		s.log.Debug().Int("removed", removed).Msg("Expired signal cache entries swept")
	}
	return nil
}
