package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"streamly/internal/platform/config"
	"streamly/internal/platform/logger"
	"streamly/internal/platform/metrics"
	"streamly/internal/player"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()
	cfg := config.FromEnv()

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{}
	prober, err := player.NewProbeClient(cfg.BackendURL, httpClient)
	if err != nil {
		log.Error("probe client", "error", err)
		os.Exit(1)
	}
	builder, err := player.NewURLBuilder(cfg.BackendURL)
	if err != nil {
		log.Error("url builder", "error", err)
		os.Exit(1)
	}

	met := metrics.New()
	engines := player.NewEngineFactory(cfg.Engine, httpClient)
	newController := func() *player.Controller {
		return player.NewController(player.ControllerConfig{
			Prober:        prober,
			BuildURL:      builder.Build,
			NewEngine:     engines,
			MaxRecoveries: cfg.MaxRecoveries,
			Log:           log,
			Metrics:       met,
		})
	}

	registry := player.NewSessionRegistry()
	svc := player.NewService(registry, newController, player.Locator(cfg.DevMediaURL), log)
	h := player.NewHandler(svc, log)

	var limit []func(http.Handler) http.Handler
	if cfg.SessionRateLimit > 0 {
		limit = append(limit, httprate.LimitByIP(cfg.SessionRateLimit, time.Minute))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() { met.SetActiveSessions(registry.ActiveSessionCount()) }).ServeHTTP(w, r)
	})
	h.Register(r, limit...)

	if cfg.DevMediaURL != "" {
		id := svc.OpenDev()
		log.Info("dev session opened", "session_id", string(id), "media_url", cfg.DevMediaURL)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", cfg.Port,
		"backend_url", cfg.BackendURL,
		"engine", cfg.Engine,
		"log_level", cfg.LogLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		svc.Shutdown()
		os.Exit(1)
	}
	svc.Shutdown()

	log.Info("server stopped")
}
