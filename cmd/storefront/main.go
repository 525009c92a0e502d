package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/trendora/storefront/internal/handlers"
	"github.com/trendora/storefront/internal/platform/config"
	"github.com/trendora/storefront/internal/platform/observability"
	badgerrepo "github.com/trendora/storefront/internal/repositories/badger"
	"github.com/trendora/storefront/internal/repositories/catalogfile"
	"github.com/trendora/storefront/internal/services"
	"github.com/trendora/storefront/internal/web"
)

var (
	version   = "dev"
	commitSHA = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger, err := observability.NewLogger()
	if err != nil {
		return fmt.Errorf("initialise logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = logger.With(zap.String("environment", cfg.Environment))

	provider, err := badgerrepo.NewProvider(badgerrepo.Options{
		Path:     cfg.Store.Path,
		InMemory: cfg.Store.InMemory,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("open cart store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Close(closeCtx); err != nil {
			logger.Error("failed to close cart store", zap.Error(err))
		}
	}()

	cartRepo, err := badgerrepo.NewCartRepository(provider)
	if err != nil {
		return fmt.Errorf("build cart repository: %w", err)
	}
	catalogRepo, err := catalogfile.NewCatalogRepository(cfg.Catalog.Path,
		catalogfile.WithRefreshInterval(cfg.Catalog.RefreshInterval))
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}

	cartService, err := services.NewCartService(services.CartServiceDeps{
		Repository: cartRepo,
		Summary:    services.NewFlatRateSummaryCalculator(cfg.Pricing.ShippingFee),
		Logger:     serviceLogger(logger.Named("cart_service")),
	})
	if err != nil {
		return fmt.Errorf("build cart service: %w", err)
	}

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{
		Catalog: catalogRepo,
		Logger:  serviceLogger(logger.Named("catalog_service")),
	})
	if err != nil {
		return fmt.Errorf("build catalog service: %w", err)
	}

	sessions := web.NewSessionManager(web.SessionConfig{
		CookieName: cfg.Web.SessionCookieName,
		Secret:     cfg.Web.SessionSecret,
		MaxAge:     cfg.Web.SessionMaxAge,
		Secure:     cfg.Environment == "prod",
	}, logger.Named("session"))

	renderer, err := web.NewRenderer(cfg.Web.TemplateGlob, cfg.Web.ReloadTemplates)
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	webHandlers, err := web.NewHandlers(web.HandlersDeps{
		Carts:     cartService,
		Catalog:   catalogService,
		Renderer:  renderer,
		StaticDir: cfg.Web.StaticDir,
	})
	if err != nil {
		return fmt.Errorf("build web handlers: %w", err)
	}

	cartHandlers := handlers.NewCartHandlers(cartService,
		handlers.WithCartMutationLimit(60, time.Minute))
	catalogHandlers := handlers.NewCatalogHandlers(catalogService)
	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthBuildInfo(handlers.BuildInfo{
			Version:     version,
			CommitSHA:   commitSHA,
			Environment: cfg.Environment,
			StartedAt:   time.Now(),
		}),
		handlers.WithReadinessCheck("cart_store", func(ctx context.Context) error {
			if db := provider.DB(); db == nil || db.IsClosed() {
				return errors.New("cart store is closed")
			}
			return nil
		}),
	)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger),
			observability.TraceMiddleware(),
			observability.RequestLoggerMiddleware(),
			observability.RecoveryMiddleware(logger),
		),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithCartRoutes(cartHandlers.Routes),
		handlers.WithCatalogRoutes(catalogHandlers.Routes),
		handlers.WithWebRoutes(webHandlers.Routes),
		handlers.WithWebMiddlewares(sessions.Middleware),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("storefront listening",
			zap.String("addr", server.Addr),
			zap.String("version", version),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			_ = server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// serviceLogger bridges the services' logging callback onto a named zap logger.
func serviceLogger(logger *zap.Logger) func(context.Context, string, map[string]any) {
	return func(ctx context.Context, event string, fields map[string]any) {
		zapFields := make([]zap.Field, 0, len(fields))
		for key, value := range fields {
			zapFields = append(zapFields, zap.Any(key, value))
		}
		logger.Info(event, zapFields...)
	}
}
