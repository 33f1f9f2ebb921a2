// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

// Package main is the entry point for the BGGSync daemon.
//
// BGGSync polls the BoardGameGeek XML API for one user's collection and
// play history, keeps the latest consistent snapshot in memory, and
// serves it over a small REST API. It can also log plays back to BGG
// through the site's session-cookie form endpoint.
//
// # Application Architecture
//
// Startup order:
//
//  1. Configuration: layered load via Koanf v2 (defaults, config.yaml,
//     environment variables)
//  2. Logging: zerolog, configured from the logging section
//  3. BGG client: rate-limited HTTP client, optionally wrapped in a
//     circuit breaker
//  4. Sync manager: the periodic refresh loop
//  5. HTTP server: REST API plus Prometheus metrics
//  6. Supervisor tree: suture v4 keeps the sync loop and the HTTP
//     server running independently
//
// # Configuration
//
// Highest priority wins:
//   - Environment variables (BGG_USERNAME, BGG_API_TOKEN, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// Minimal setup:
//
//	export BGG_USERNAME=your-bgg-user
//	export BGG_API_TOKEN=your-api-token
//	./bggsync
//
// To log plays, the account password is needed as well:
//
//	export ENABLE_PLAY_LOGGING=true
//	export BGG_PASSWORD=your-password
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server drains
// in-flight requests (10s timeout) and the refresh loop stops at the
// next safe point.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/mfranz87/bggsync/internal/api"
	"github.com/mfranz87/bggsync/internal/config"
	"github.com/mfranz87/bggsync/internal/logging"
	"github.com/mfranz87/bggsync/internal/metrics"
	"github.com/mfranz87/bggsync/internal/supervisor"
	"github.com/mfranz87/bggsync/internal/supervisor/services"
	"github.com/mfranz87/bggsync/internal/sync"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		// Default logger; config (and with it the log level) is not
		// available yet.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("username", cfg.BGG.Username).
		Dur("sync_interval", cfg.Sync.Interval).
		Bool("play_logging", cfg.BGG.EnableLogging).
		Int("tracked_games", len(cfg.TrackedGameIDs())).
		Msg("Starting BGGSync")

	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
	startTime := time.Now()

	// BGG client, optionally behind the circuit breaker.
	var client sync.BGGClientInterface = sync.NewBGGClient(&cfg.BGG, cfg.EffectivePassword())
	if cfg.Sync.CircuitBreaker {
		client = sync.NewCircuitBreakerClient(client)
		logging.Info().Msg("Circuit breaker enabled for BGG client")
	}

	manager := sync.NewManager(cfg, client)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(cfg, manager).Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	// Supervisor tree: sync loop and HTTP server restart independently.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddSyncService(manager)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	// Uptime gauge ticks until shutdown.
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.AppUptime.Set(time.Since(startTime).Seconds())
			}
		}
	}()

	logging.Info().Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	logging.Info().Msg("Application stopped gracefully")
}
