package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/angelmondragon/mia-backend/pkg/logger"
	"github.com/angelmondragon/mia-backend/pkg/metrics"
	"github.com/angelmondragon/mia-backend/pkg/redis"
	"github.com/angelmondragon/mia-backend/pkg/search"
)

const defaultCacheTTL = 6 * time.Hour

// CacheStore is the subset of the redis client used for result caching.
type CacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SearchCacheKey(engine, query string) string
}

// CachedSearcherParams configure NewCachedSearcher.
type CachedSearcherParams struct {
	Next    search.Searcher
	Store   CacheStore
	Engine  string
	TTL     time.Duration
	Logger  *logger.Logger
	Metrics *metrics.SearchMetrics
}

// CachedSearcher serves repeated queries from redis for the configured TTL.
// Cache failures are logged and fall through to the wrapped searcher; errors
// from the wrapped searcher are never cached.
type CachedSearcher struct {
	next    search.Searcher
	store   CacheStore
	engine  string
	ttl     time.Duration
	logg    *logger.Logger
	metrics *metrics.SearchMetrics
}

// NewCachedSearcher wraps a searcher with a redis-backed cache.
func NewCachedSearcher(params CachedSearcherParams) (*CachedSearcher, error) {
	if params.Next == nil {
		return nil, errors.New("next searcher required")
	}
	if params.Store == nil {
		return nil, errors.New("cache store required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	engine := params.Engine
	if engine == "" {
		engine = defaultEngine
	}
	return &CachedSearcher{
		next:    params.Next,
		store:   params.Store,
		engine:  engine,
		ttl:     ttl,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// Search implements search.Searcher.
func (s *CachedSearcher) Search(ctx context.Context, query string) ([]search.Candidate, error) {
	key := s.store.SearchCacheKey(s.engine, query)

	raw, err := s.store.Get(ctx, key)
	switch {
	case err == nil:
		var cached []search.Candidate
		jsonErr := json.Unmarshal([]byte(raw), &cached)
		if jsonErr == nil {
			s.metrics.IncCache(metrics.CacheHit)
			return cached, nil
		}
		s.metrics.IncCache(metrics.CacheError)
		s.warn(ctx, "search.cache.decode_failed", jsonErr)
	case redis.IsNil(err):
		s.metrics.IncCache(metrics.CacheMiss)
	default:
		s.metrics.IncCache(metrics.CacheError)
		s.warn(ctx, "search.cache.read_failed", err)
	}

	candidates, err := s.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(candidates)
	if err != nil {
		s.warn(ctx, "search.cache.encode_failed", err)
		return candidates, nil
	}
	if err := s.store.Set(ctx, key, string(payload), s.ttl); err != nil {
		s.warn(ctx, "search.cache.write_failed", err)
	}
	return candidates, nil
}

func (s *CachedSearcher) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}
