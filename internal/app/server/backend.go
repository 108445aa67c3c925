package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"kpiteam/internal/domain/backend"
	"kpiteam/internal/domain/kpi"
	"kpiteam/internal/platform/config"
	"kpiteam/internal/platform/db"
	"kpiteam/internal/platform/metrics"
	backendhandler "kpiteam/internal/transport/http/handlers/backend"
	"kpiteam/internal/transport/http/middleware"
)

// RunBackend serves the reference action backend on Postgres until ctx is
// cancelled.
func RunBackend(ctx context.Context, cfg config.Config) error {
	if err := cfg.ValidateBackend(); err != nil {
		return err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db connect failed: %w", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
	}
	if cfg.RunSeed {
		rows, err := backend.SeedRows(kpi.Seed())
		if err != nil {
			return fmt.Errorf("seed rows: %w", err)
		}
		inserted, err := db.Seed(ctx, pool, rows)
		if err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
		log.Printf("seeded %d of %d entities", inserted, len(rows))
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}
	router := backendRouter(pool, backend.New(backend.NewStore(pool)), cfg.MaxBodyBytes, collector)

	log.Printf("KPI backend listening on %s", cfg.BackendAddr)
	return listen(ctx, cfg.BackendAddr, router)
}

// Pinger reports database reachability for /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

func backendRouter(pool Pinger, svc *backend.Service, maxBytes int64, collector *metrics.Collector) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(chimw.Recoverer)
	router.Use(middleware.Metrics(collector))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if collector != nil {
		router.Handle("/metrics", collector.Handler())
	}

	backendhandler.NewHandler(svc, maxBytes).RegisterRoutes(router)
	return router
}
