// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mfranz87/bggsync/internal/config"
	"github.com/mfranz87/bggsync/internal/middleware"
)

// Router wires handlers and middleware into the HTTP route tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for the given configuration and sync
// manager.
func NewRouter(cfg *config.Config, manager SyncManager) *Router {
	mwCfg := DefaultChiMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mwCfg.RateLimitDisabled = cfg.Security.RateLimitDisabled
	if cfg.Security.RateLimitReqs > 0 {
		mwCfg.RateLimitRequests = cfg.Security.RateLimitReqs
	}
	if cfg.Security.RateLimitWindow > 0 {
		mwCfg.RateLimitWindow = cfg.Security.RateLimitWindow
	}

	return &Router{
		handler:       NewHandler(cfg, manager),
		chiMiddleware: NewChiMiddleware(mwCfg),
	}
}

// Setup configures all HTTP routes using the Chi router.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Applied to ALL routes in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(middleware.Compression)

	// Health endpoints get a permissive rate limit so monitoring probes
	// keep working while the data endpoints are throttled.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/snapshot", router.handler.Snapshot)
		r.Get("/collection", router.handler.Collection)
		r.Get("/counts", router.handler.Counts)
		r.Get("/games", router.handler.Games)
		r.Get("/games/{id}", router.handler.GameByID)
		r.Get("/plays/last", router.handler.LastPlay)

		r.Post("/plays", router.handler.RecordPlay)
		r.Post("/sync", router.handler.TriggerSync)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
