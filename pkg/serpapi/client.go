package serpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/angelmondragon/mia-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/mia-backend/pkg/errors"
	"github.com/angelmondragon/mia-backend/pkg/metrics"
	"github.com/angelmondragon/mia-backend/pkg/search"
)

const (
	defaultBaseURL              = "https://serpapi.com"
	defaultEngine               = "google_shopping"
	defaultResultLimit          = 10
	defaultTimeout              = 10 * time.Second
	responseBodyLimit     int64 = 4 << 20
	errorBodyReadLimit    int64 = 1024
)

var (
	errAPIKeyRequired = errors.New("serpapi api key is required")
)

// Client queries SerpAPI's Google Shopping engine.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	engine     string
	country    string
	language   string
	limit      int
	limiter    *rate.Limiter
	metrics    *metrics.SearchMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the SerpAPI host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithLocale sets the gl/hl parameters.
func WithLocale(country, language string) Option {
	return func(c *Client) {
		c.country = strings.TrimSpace(country)
		c.language = strings.TrimSpace(language)
	}
}

// WithResultLimit caps how many results SerpAPI returns per query.
func WithResultLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// WithRateLimit throttles outbound requests; the limiter is shared by every
// goroutine using this client.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithMetrics records request outcomes and latency.
func WithMetrics(m *metrics.SearchMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds the SerpAPI client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		engine:     defaultEngine,
		limit:      defaultResultLimit,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return client, nil
}

// NewFromConfig builds a client from the SerpAPI config section. Extra options
// are applied after the config-derived ones.
func NewFromConfig(cfg config.SerpAPIConfig, opts ...Option) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	base := []Option{
		WithHTTPClient(&http.Client{Timeout: timeout}),
		WithBaseURL(cfg.BaseURL),
		WithLocale(cfg.Country, cfg.Language),
		WithResultLimit(cfg.ResultLimit),
		WithRateLimit(cfg.RequestsPerSecond, cfg.Burst),
		func(c *Client) {
			if e := strings.TrimSpace(cfg.Engine); e != "" {
				c.engine = e
			}
		},
	}
	return NewClient(cfg.APIKey, append(base, opts...)...)
}

// Engine returns the configured SerpAPI engine name.
func (c *Client) Engine() string {
	return c.engine
}

// Search runs one shopping query. A query with no results returns an empty
// slice; only transport, auth or decoding failures return an error.
func (c *Client) Search(ctx context.Context, query string) ([]search.Candidate, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "serpapi client not configured")
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query is required")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, pkgerrors.FromContext(err, "wait for search rate limit")
		}
	}

	start := time.Now()
	candidates, err := c.do(ctx, trimmed)
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case len(candidates) == 0:
		outcome = "empty"
	}
	c.metrics.ObserveRequest(outcome, time.Since(start))
	return candidates, err
}

func (c *Client) do(ctx context.Context, query string) ([]search.Candidate, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(query), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build search request")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.FromContext(err, "execute search request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "search request failed")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return nil, pkgerrors.FromContext(err, "read search response")
	}
	return ParseCandidates(body)
}

func (c *Client) searchURL(query string) string {
	params := url.Values{}
	params.Set("engine", c.engine)
	params.Set("q", query)
	params.Set("api_key", c.apiKey)
	params.Set("num", strconv.Itoa(c.limit))
	if c.country != "" {
		params.Set("gl", c.country)
	}
	if c.language != "" {
		params.Set("hl", c.language)
	}
	return fmt.Sprintf("%s/search.json?%s", strings.TrimRight(c.baseURL, "/"), params.Encode())
}
