// Package api provides the HTTP API for GreenRoute.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/greenroute/greenroute/internal/airquality"
	"github.com/greenroute/greenroute/internal/api/handler"
	"github.com/greenroute/greenroute/internal/api/middleware"
	"github.com/greenroute/greenroute/internal/poi"
	"github.com/greenroute/greenroute/internal/routing"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	ServiceName string
	Logger      zerolog.Logger
	Metrics     *middleware.Metrics

	Engine     *routing.Engine
	AirQuality *airquality.Service
	POIs       *poi.Index

	// ReadyChecks feed the readiness endpoint, keyed by subsystem name.
	ReadyChecks map[string]handler.ReadyCheck
}

// NewRouter creates a chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "greenroute-api"
	}

	// Global middleware, order matters.
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.ContentTypeJSON)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.ReadyChecks)
	routeHandler := handler.NewRouteHandler(cfg.Engine, cfg.POIs, cfg.Logger)
	stationHandler := handler.NewStationHandler(cfg.AirQuality, cfg.Logger)

	routingRateLimit := middleware.RateLimitByIP(middleware.RoutingRateLimit)
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (unlimited).
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		// Route comparison is the expensive endpoint.
		r.With(routingRateLimit).Post("/routes/compare", routeHandler.CompareRoutes)

		// Station snapshot is served from cache.
		r.With(standardRateLimit).Get("/stations", stationHandler.ListStations)
	})

	return r
}
