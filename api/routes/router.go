package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/mia-backend/api/controllers"
	"github.com/angelmondragon/mia-backend/api/middleware"
	"github.com/angelmondragon/mia-backend/internal/pricing"
	"github.com/angelmondragon/mia-backend/internal/users"
	"github.com/angelmondragon/mia-backend/internal/wishlist"
	"github.com/angelmondragon/mia-backend/pkg/config"
	"github.com/angelmondragon/mia-backend/pkg/logger"
)

// Deps carries everything the router hands to controllers. Nil services
// render a 500 from their handlers instead of panicking.
type Deps struct {
	DB          controllers.Pinger
	Redis       controllers.Pinger
	RateLimiter middleware.WindowLimiter
	Gatherer    prometheus.Gatherer

	Pricing  pricing.Service
	Tracker  controllers.CycleRunner
	Wishlist wishlist.Service
	Users    users.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Security.AllowedOrigins),
	)

	pricingPolicy := middleware.NewRateLimitPolicy(
		"pricing",
		cfg.RateLimit.PricingWindow,
		cfg.RateLimit.PricingLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": deps.Redis,
		}))
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APIKey(cfg.Security.APISharedKey, logg))

		r.Route("/prices", func(r chi.Router) {
			r.With(middleware.RateLimit(pricingPolicy, deps.RateLimiter, logg)).Post("/final", controllers.FinalPrice(deps.Pricing, logg))
			r.With(middleware.CronAuth(cfg.Security.CronSecret, logg)).Post("/check", controllers.CheckPrices(deps.Tracker, logg))
		})

		r.Route("/wishes", func(r chi.Router) {
			r.Post("/", controllers.WishCreate(deps.Wishlist, logg))
			r.Get("/", controllers.WishList(deps.Wishlist, logg))
			r.Delete("/", controllers.WishDeleteByName(deps.Wishlist, logg))
			r.Delete("/{wishId}", controllers.WishDelete(deps.Wishlist, logg))
			r.Get("/{wishId}/history", controllers.WishHistory(deps.Wishlist, logg))
		})

		r.Post("/users", controllers.UserRegister(deps.Users, logg))
	})

	return r
}
