// Package main is the entry point for the answerd gateway server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talkbase/answerd/internal/api"
	"github.com/talkbase/answerd/internal/auth"
	"github.com/talkbase/answerd/internal/config"
	"github.com/talkbase/answerd/internal/metrics"
	"github.com/talkbase/answerd/internal/observability"
	"github.com/talkbase/answerd/internal/provider"
	"github.com/talkbase/answerd/internal/store"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	// Local development convenience; absence is not an error.
	_ = godotenv.Load()

	cfgManager, err := config.NewManager(*configPath, slog.Default())
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	cfg := cfgManager.Get()

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting answerd gateway", "version", "0.1.0")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := cfgManager.Watch(ctx); err != nil {
		logger.Warn("config hot-reload disabled", "error", err)
	}

	// Migrations run under the privileged service credential; request
	// traffic never does.
	if cfg.Store.ServiceCredential != "" {
		if err := runMigrations(ctx, cfg.Store); err != nil {
			logger.Error("migration failed", "error", err)
			os.Exit(1)
		}
		logger.Info("schema migration complete")
	}

	st, err := store.NewPostgresStore(&store.PostgresConfig{
		URL:          cfg.Store.URL,
		Credential:   cfg.Store.UserCredential,
		MaxOpenConns: cfg.Store.MaxOpenConns,
		MaxIdleConns: cfg.Store.MaxIdleConns,
		ConnLifetime: cfg.Store.ConnLifetime,
	})
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	verifier, err := newVerifier(cfg.Identity)
	if err != nil {
		logger.Error("failed to configure identity verifier", "error", err)
		os.Exit(1)
	}

	// The provider client sits behind a swapper so a config reload (rotated
	// API key, new model) takes effect on the next request.
	client := provider.NewSwapper(newProviderClient(cfg.Provider))
	cfgManager.OnChange(newProviderReloader(logger, client).Reload)

	handler := api.NewHandler(st, client, logger, cfg.Cache.SemanticReuse)

	opts := api.RouteOptions{
		Auth: auth.NewMiddleware(verifier, logger).Authenticate,
	}
	if cfg.RateLimit.Enabled {
		rl := api.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst, logger)
		opts.RateLimit = rl.Limit
		cfgManager.OnChange(func(c *config.Config) {
			rl.Update(c.RateLimit.RequestsPerMinute, c.RateLimit.Burst)
		})
	}

	mux := api.Routes(handler, opts)

	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, promhttp.Handler())
	}

	var httpHandler http.Handler = mux
	httpHandler = metrics.Middleware(httpHandler)
	httpHandler = observability.RequestIDMiddleware(httpHandler)
	httpHandler = corsMiddleware(cfg.CORS, httpHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	cfgManager.Close()
	logger.Info("server stopped")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func newVerifier(cfg config.IdentityConfig) (auth.Verifier, error) {
	var verifier auth.Verifier
	switch cfg.Mode {
	case "remote":
		verifier = auth.NewRemoteVerifier(auth.RemoteConfig{
			IssuerURL: cfg.IssuerURL,
			AnonKey:   cfg.AnonKey,
		})
	default:
		jwtVerifier, err := auth.NewJWTVerifier(cfg.JWTSecret)
		if err != nil {
			return nil, err
		}
		verifier = jwtVerifier
	}

	if cfg.CacheTTL > 0 {
		verifier = auth.NewCachingVerifier(verifier, cfg.CacheTTL)
	}
	return verifier, nil
}

// runMigrations opens a short-lived service-tier connection, applies the
// schema, and closes it.
func runMigrations(ctx context.Context, cfg config.StoreConfig) error {
	st, err := store.NewPostgresStore(&store.PostgresConfig{
		URL:          cfg.URL,
		Credential:   cfg.ServiceCredential,
		MaxOpenConns: 2,
		MaxIdleConns: 1,
		ConnLifetime: time.Minute,
	})
	if err != nil {
		return err
	}
	defer st.Close()

	return store.Migrate(ctx, st.DB())
}
