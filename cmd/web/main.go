package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"bizdash/internal/config"
	"bizdash/internal/handlers"
	"bizdash/internal/middleware"
	"bizdash/internal/observability"
	"bizdash/internal/server"
	"bizdash/internal/services"
	"bizdash/internal/store"
	"bizdash/internal/ui/views"
)

const (
	renderTimeout = 10 * time.Second
	cacheMaxAge   = "no-cache"
)

func dashboardHandler(reports *services.Reports) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		ym, ok := reports.LatestMonth()
		if !ok {
			ym = services.YearMonthOf(time.Now())
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", cacheMaxAge)
		if err := views.Dashboard(views.DashboardPage{Month: ym.String()}).Render(ctx, w); err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

// openData loads the configured data source into reports. The returned store
// is nil unless the source accepts writes.
func openData(ctx context.Context, cfg config.DataConfig, reports *services.Reports, logger *slog.Logger) (*store.Repository, error) {
	loader := services.NewLoader(cfg.CacheDir, observability.Component(logger, "loader"))

	switch cfg.Driver {
	case config.DriverSQLite:
		repo, err := store.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if cfg.ImportCSV {
			data, err := loader.Load(ctx, cfg.SalesCSV, cfg.ProductsCSV)
			if err != nil {
				repo.Close()
				return nil, fmt.Errorf("import csv: %w", err)
			}
			if err := repo.ImportDataset(ctx, data); err != nil {
				repo.Close()
				return nil, err
			}
		}
		if err := reports.Refresh(ctx, repo); err != nil {
			repo.Close()
			return nil, err
		}
		return repo, nil

	default:
		src := &services.CSVSource{Loader: loader, SalesPath: cfg.SalesCSV, ProductsPath: cfg.ProductsCSV}
		return nil, reports.Refresh(ctx, src)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"data_driver", cfg.Data.Driver,
		"addr", cfg.Address(),
	)

	reports := services.NewReports(observability.Component(logger, "reports"))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Data.LoadTimeout)
	start := time.Now()
	repo, err := openData(ctx, cfg.Data, reports, logger)
	cancel()
	if err != nil {
		logger.Error("failed to load data", "error", err)
		os.Exit(1)
	}
	logger.Info("data loaded successfully", "duration", time.Since(start))

	// A nil *store.Repository must not become a non-nil interface.
	var writable handlers.Store
	if repo != nil {
		writable = repo
	}

	srv := server.NewServer(reports, writable, logger, &server.TemplateHandlers{
		Dashboard: dashboardHandler(reports),
	})

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      middlewareChain(srv),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook("rate-limiter", func(ctx context.Context) error {
		rateLimiter.Close()
		return nil
	})
	if repo != nil {
		gracefulServer.RegisterShutdownHook("store", func(ctx context.Context) error {
			return repo.Close()
		})
	}

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
