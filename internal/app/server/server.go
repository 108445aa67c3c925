package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"kpiteam/internal/domain/auth"
	"kpiteam/internal/domain/notifications"
	"kpiteam/internal/domain/photo"
	"kpiteam/internal/domain/state"
	"kpiteam/internal/platform/blob"
	"kpiteam/internal/platform/bridge"
	"kpiteam/internal/platform/config"
	"kpiteam/internal/platform/crypto"
	"kpiteam/internal/platform/kv"
	"kpiteam/internal/platform/metrics"
	authhandler "kpiteam/internal/transport/http/handlers/auth"
	dashboardhandler "kpiteam/internal/transport/http/handlers/dashboard"
	notificationshandler "kpiteam/internal/transport/http/handlers/notifications"
	statehandler "kpiteam/internal/transport/http/handlers/state"
	"kpiteam/internal/transport/http/middleware"
)

// App is the dashboard API: the domain store behind the remote call bridge,
// the session layer, and the HTTP router in front of both.
type App struct {
	Config   config.Config
	Metrics  *metrics.Collector
	Bridge   *bridge.Bridge
	Notices  *notifications.Service
	Store    *state.Store
	Sessions *auth.Sessions
	Router   http.Handler

	slot *kv.SQLite
}

// New wires the dashboard API. host is the embedding's RPC handle and may be
// nil outside an embedding.
func New(ctx context.Context, cfg config.Config, host bridge.HostHandle) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	b, err := bridge.FromConfig(cfg, host, collector)
	if err != nil {
		return nil, fmt.Errorf("bridge: %w", err)
	}

	notices := notifications.New(nil)
	store := state.New(b,
		state.WithNotifier(notices),
		state.WithMetrics(collector),
		state.WithOfflineDelay(cfg.MockDelay),
		state.WithSeedOnFailure(cfg.SeedOnFailure),
	)

	sealer, err := crypto.New(cfg.SessionEncryptionKey)
	if err != nil {
		return nil, err
	}
	slot, err := kv.Open(cfg.SessionDBPath, sealer)
	if err != nil {
		return nil, fmt.Errorf("session slot: %w", err)
	}

	photos, err := blob.FromConfig(ctx, cfg)
	if err != nil {
		_ = slot.Close()
		return nil, fmt.Errorf("photo store: %w", err)
	}

	app := &App{
		Config:   cfg,
		Metrics:  collector,
		Bridge:   b,
		Notices:  notices,
		Store:    store,
		Sessions: auth.NewSessions(slot, store, cfg.JWTSecret, cfg.SessionTTL),
		slot:     slot,
	}
	app.Router = app.routes(photo.New(photos, cfg.PhotoSize))
	return app, nil
}

func (a *App) routes(photos *photo.Service) http.Handler {
	cfg := a.Config
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Auth(a.Sessions))
	router.Use(middleware.Logger)
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.WriteRateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.Metrics(a.Metrics))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.slot.Ping(ctx); err != nil {
			http.Error(w, "session store not ready", http.StatusServiceUnavailable)
			return
		}
		if !a.Store.Ready() {
			http.Error(w, "state not loaded", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if a.Metrics != nil {
		router.Handle("/metrics", a.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(a.Sessions).RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			statehandler.NewHandler(a.Store, photos).RegisterRoutes(r)
			dashboardhandler.NewHandler(a.Store).RegisterRoutes(r)
			notificationshandler.NewHandler(a.Notices).RegisterRoutes(r)
		})
	})

	if cfg.FrontendDir != "" {
		router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})
	}
	return router
}

// Close releases the store and the session database.
func (a *App) Close() error {
	return errors.Join(a.Store.Close(), a.slot.Close())
}

// Run serves the dashboard API until ctx is cancelled. The first load runs in
// the background; /readyz reports 503 until it finishes.
func Run(ctx context.Context, cfg config.Config) error {
	app, err := New(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("close failed: %v", err)
		}
	}()

	if user, ok, err := app.Sessions.Restore(ctx); err != nil {
		log.Printf("session restore failed: %v", err)
	} else if ok {
		log.Printf("last login: %s (%s)", user.Name, user.Role)
	}

	go app.Store.LoadAll(ctx)

	log.Printf("KPI dashboard listening on %s (transport %s)", cfg.Addr, app.Bridge.Mode())
	return listen(ctx, cfg.Addr, app.Router)
}

func listen(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, filepath.Clean("/"+r.URL.Path))
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
