// Wardrobe Stylist - session service for the local stylist UI
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/ashureev/wardrobe-stylist/internal/api"
	"github.com/ashureev/wardrobe-stylist/internal/backend"
	"github.com/ashureev/wardrobe-stylist/internal/config"
	"github.com/ashureev/wardrobe-stylist/internal/domain"
	"github.com/ashureev/wardrobe-stylist/internal/geo"
	"github.com/ashureev/wardrobe-stylist/internal/media"
	"github.com/ashureev/wardrobe-stylist/internal/metrics"
	"github.com/ashureev/wardrobe-stylist/internal/middleware"
	"github.com/ashureev/wardrobe-stylist/internal/session"
	"github.com/ashureev/wardrobe-stylist/internal/store"
	"github.com/ashureev/wardrobe-stylist/internal/weather"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped successfully")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "store", cfg.Store.Backend)

	kv, err := openStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	adapter := store.NewAdapter(kv, logger)
	defer func() {
		if closeErr := adapter.Close(); closeErr != nil {
			slog.Error("Failed to close store", "error", closeErr)
		}
	}()

	if err := adapter.Ping(context.Background()); err != nil {
		return fmt.Errorf("store health check: %w", err)
	}
	slog.Info("Store connected", "backend", cfg.Store.Backend)

	swept, err := media.Sweep(cfg.MediaDir, logger)
	if err != nil {
		slog.Warn("Failed to sweep orphaned media", "error", err)
	} else if swept > 0 {
		slog.Info("Removed orphaned media", "count", swept)
	}
	factory, err := media.NewFactory(cfg.MediaDir, logger)
	if err != nil {
		return fmt.Errorf("initialize media directory: %w", err)
	}

	var locator geo.Locator = geo.Denied{}
	if loc := cfg.DeviceLocation; loc != nil {
		locator = geo.Static{Location: domain.Location{Lat: loc.Lat, Lon: loc.Lon}}
	}

	// Outbound calls carry trace context to the stylist backend.
	httpClient := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

	mgr := session.NewManager(session.Options{
		Stylist: backend.NewClient(backend.Config{
			BaseURL:        cfg.StylistAPIURL,
			AnalyzeTimeout: cfg.Timeouts.Analyze,
			ChatTimeout:    cfg.Timeouts.Chat,
			HTTPClient:     httpClient,
		}, logger),
		Weather:       weather.NewClient(cfg.WeatherAPIURL, cfg.Timeouts.Weather, httpClient, logger),
		Locator:       locator,
		Store:         adapter,
		Media:         factory,
		Logger:        logger,
		PhaseInterval: cfg.LoadingPhaseInterval,
	})
	defer mgr.Close()

	if err := mgr.Hydrate(context.Background()); err != nil {
		return fmt.Errorf("hydrate session: %w", err)
	}

	sessionHandler := api.NewHandler(mgr, cfg.FrontendURL, cfg.IsDevelopment(), logger)
	healthHandler := api.NewHealthHandler(adapter)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins()))

	healthHandler.RegisterHealth(r)
	sessionHandler.RegisterRoutes(r)
	if cfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler(metrics.NewRegistry()))
	}

	// The snapshot stream is long-lived, so there is no write timeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(r, "wardrobe-stylist"),
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := mgr.GetUserLocation(gctx); err != nil {
			slog.Debug("Startup enrichment skipped", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		sessionHandler.Wait()
		return nil
	})

	return g.Wait()
}

func openStore(cfg config.StoreConfig) (store.KV, error) {
	switch cfg.Backend {
	case config.StoreSQLite:
		return store.NewSQLite(cfg.DBPath)
	case config.StoreBadger:
		return store.NewBadger(cfg.BadgerDir)
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return store.NewRedis(client, store.WithPrefix(cfg.RedisPrefix)), nil
	case config.StoreMemory:
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
