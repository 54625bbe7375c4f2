package serpapi

import (
	"errors"

	"github.com/angelmondragon/mia-backend/pkg/config"
	"github.com/angelmondragon/mia-backend/pkg/logger"
	"github.com/angelmondragon/mia-backend/pkg/metrics"
	"github.com/angelmondragon/mia-backend/pkg/search"
)

// ErrNotConfigured reports that no SerpAPI key is set.
var ErrNotConfigured = errors.New("serpapi key not configured")

// NewLiveSearcher builds an uncached searcher for the price tracker.
func NewLiveSearcher(cfg config.SerpAPIConfig, m *metrics.SearchMetrics) (search.Searcher, error) {
	client, err := newClient(cfg, m)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// NewSearcher builds the searcher used for basket pricing, wrapped in the
// redis cache when cacheEnabled is set and a store is given.
func NewSearcher(cfg config.SerpAPIConfig, store CacheStore, cacheEnabled bool, logg *logger.Logger, m *metrics.SearchMetrics) (search.Searcher, error) {
	client, err := newClient(cfg, m)
	if err != nil {
		return nil, err
	}
	if !cacheEnabled || store == nil {
		return client, nil
	}
	cached, err := NewCachedSearcher(CachedSearcherParams{
		Next:    client,
		Store:   store,
		Engine:  client.Engine(),
		TTL:     cfg.CacheTTL,
		Logger:  logg,
		Metrics: m,
	})
	if err != nil {
		return nil, err
	}
	return cached, nil
}

func newClient(cfg config.SerpAPIConfig, m *metrics.SearchMetrics) (*Client, error) {
	client, err := NewFromConfig(cfg, WithMetrics(m))
	if errors.Is(err, errAPIKeyRequired) {
		return nil, ErrNotConfigured
	}
	return client, err
}
