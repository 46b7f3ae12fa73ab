package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appthandler "peegflow/internal/appointment/handler"
	authhandler "peegflow/internal/auth/handler"
	financehandler "peegflow/internal/finance/handler"
	patienthandler "peegflow/internal/patient/handler"
	"peegflow/internal/platform/health"
	ratelimitmw "peegflow/internal/ratelimit/middleware"
	ratelimitmodels "peegflow/internal/ratelimit/models"
	notehandler "peegflow/internal/sessionnote/handler"
	tenanthandler "peegflow/internal/tenant/handler"
	authmw "peegflow/pkg/platform/middleware/auth"
	"peegflow/pkg/platform/middleware/metadata"
	"peegflow/pkg/platform/middleware/opstoken"
	"peegflow/pkg/platform/middleware/request"
	"peegflow/pkg/platform/middleware/requesttime"
)

const maxBodyBytes = 1 << 20

// newRouter mounts every route. Public auth endpoints sit outside the JSON
// content-type check because login also accepts form posts.
func (a *app) newRouter(reg prometheus.Registerer, gatherer prometheus.Gatherer) (http.Handler, error) {
	proxies, err := metadata.ParseTrustedProxies(a.cfg.Server.TrustedProxies)
	if err != nil {
		return nil, err
	}
	logger := a.logger
	svc := a.services

	r := chi.NewRouter()
	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(metadata.NewMiddleware(metadata.Config{TrustedProxies: proxies}).Handler)
	r.Use(request.Logger(logger))
	r.Use(request.Latency(request.NewMetrics(reg)))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", authmw.TenantSlugHeader},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(chimiddleware.Compress(5, "application/json"))
	r.Use(request.Timeout(a.cfg.Server.RequestTimeout))
	r.Use(request.BodyLimit(maxBodyBytes))
	r.Use(requesttime.Middleware)

	hh := health.New(a.cfg.Server.Environment)
	if a.pool != nil {
		hh.RegisterCheck("database", health.Ping(a.pool))
	}
	if a.redis != nil {
		hh.RegisterCheck("redis", health.Ping(a.redis))
	}
	hh.Register(r)

	r.With(opstoken.Require(a.cfg.Server.MetricsToken, logger)).
		Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	auth := authhandler.New(svc.auth, logger)
	r.Group(func(r chi.Router) {
		r.Use(ratelimitmw.RateLimit(a.limiter, ratelimitmodels.ClassAuth))
		auth.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(authmw.RequireTenantAuth(svc.auth, logger))

		auth.RegisterTenant(r)
		appthandler.New(svc.appointments, logger).Register(r)
		patienthandler.New(svc.patients, logger).Register(r)
		notehandler.New(svc.notes, logger).Register(r)
		financehandler.New(svc.finance, logger).Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(authmw.RequirePlatformAdmin(svc.auth, logger))

		auth.RegisterPlatform(r)
		tenanthandler.New(svc.tenants, logger).Register(r)
	})

	return r, nil
}
