package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lmorand/brasserie-backend/api/controllers"
	"github.com/lmorand/brasserie-backend/api/middleware"
	"github.com/lmorand/brasserie-backend/internal/auth"
	"github.com/lmorand/brasserie-backend/internal/menus"
	"github.com/lmorand/brasserie-backend/pkg/config"
	"github.com/lmorand/brasserie-backend/pkg/logger"
	"github.com/lmorand/brasserie-backend/pkg/metrics"
	"github.com/lmorand/brasserie-backend/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          pinger
	Redis       *redis.Client
	AuthService auth.Service
	MenuService menus.Service
	Registry    *prometheus.Registry
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(),
	)

	if p.Registry != nil {
		httpMetrics := metrics.NewHTTPMetrics(p.Registry)
		r.Use(httpMetrics.Middleware)
		r.Method(http.MethodGet, "/metrics", metrics.Handler(p.Registry))
	}

	// A nil *redis.Client must not reach the readiness probe as a
	// non-nil interface.
	var cache pinger
	if p.Redis != nil {
		cache = p.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, p.DB, cache))
	})

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		p.Config.RateLimit.LoginWindow,
		p.Config.RateLimit.LoginIPLimit,
		p.Config.RateLimit.LoginIdentifierLimit,
	)

	requireAuth := middleware.Auth(p.Config.Token, p.Logger)

	r.Route("/api/v1/auth", func(r chi.Router) {
		login := controllers.AuthLogin(p.AuthService, p.Logger)
		if p.Redis != nil {
			r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, p.Logger)).Post("/login", login)
		} else {
			// Without Redis the login surface runs unthrottled.
			r.Post("/login", login)
		}
		r.Post("/refresh", controllers.AuthRefresh(p.AuthService, p.Logger))
		r.With(requireAuth).Get("/me", controllers.AuthMe(p.AuthService, p.Logger))
	})

	r.Route("/api/v1/menus", func(r chi.Router) {
		r.Get("/current", controllers.MenuCurrent(p.MenuService, p.Logger))
		r.With(requireAuth).Post("/", controllers.MenuPublish(p.MenuService, p.Logger))
	})

	return r
}
