package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/mia-backend/internal/tracking"
	"github.com/angelmondragon/mia-backend/pkg/config"
	"github.com/angelmondragon/mia-backend/pkg/logger"
	"github.com/angelmondragon/mia-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubTracker struct{ calls int }

func (s *stubTracker) RunCycle(context.Context) (*tracking.CycleResult, error) {
	s.calls++
	return &tracking.CycleResult{}, nil
}

type countingLimiter struct{ calls int }

func (c *countingLimiter) FixedWindowAllow(context.Context, string, int64, time.Duration) (bool, int64, error) {
	c.calls++
	return c.calls <= 1, int64(c.calls), nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev"},
		Security: config.SecurityConfig{
			APISharedKey: "shared",
			CronSecret:   "cron",
		},
		RateLimit: config.RateLimitConfig{PricingWindow: time.Minute, PricingLimit: 1},
	}
}

func newTestRouter(t *testing.T, deps Deps) http.Handler {
	t.Helper()
	return NewRouter(testConfig(), logger.New(logger.Options{ServiceName: "router-test"}), deps)
}

func TestHealthRoutesArePublic(t *testing.T) {
	router := newTestRouter(t, Deps{DB: stubPinger{}, Redis: stubPinger{}})

	for _, path := range []string{"/health/live", "/health/ready"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.NewTrackingMetrics(reg).IncStatus("price_drop")
	router := newTestRouter(t, Deps{Gatherer: reg})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "tracking_checks_total")
}

func TestAPIRequiresSharedKey(t *testing.T) {
	router := newTestRouter(t, Deps{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/wishes", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckRequiresCronSecret(t *testing.T) {
	tracker := &stubTracker{}
	router := newTestRouter(t, Deps{Tracker: tracker})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/prices/check", nil)
	req.Header.Set("x-api-key", "shared")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, 0, tracker.calls)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/prices/check", nil)
	req.Header.Set("x-api-key", "shared")
	req.Header.Set("Authorization", "Bearer cron")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, tracker.calls)
}

func TestFinalPriceIsRateLimited(t *testing.T) {
	limiter := &countingLimiter{}
	router := newTestRouter(t, Deps{RateLimiter: limiter})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/prices/final", strings.NewReader(`{"query":"ração"}`))
		req.Header.Set("x-api-key", "shared")
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	// the nil pricing service answers 500 once the limiter lets the call through
	require.Equal(t, []int{http.StatusInternalServerError, http.StatusTooManyRequests}, codes)
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(t, Deps{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
