// Package server собирает HTTP сервер синхронизации из обработчиков и middleware.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/iudanet/carekeeper/internal/reliability"
	"github.com/iudanet/carekeeper/internal/server/handlers"
	"github.com/iudanet/carekeeper/internal/server/kv"
	"github.com/iudanet/carekeeper/internal/server/middleware"
	"github.com/iudanet/carekeeper/internal/server/storage"
	"github.com/iudanet/carekeeper/pkg/api"
)

// maintenanceInterval период очистки лимитера и KV в памяти
const maintenanceInterval = time.Minute

// Config параметры HTTP сервера
type Config struct {
	Addr            string
	JWT             handlers.JWTConfig
	IdempotencyTTL  time.Duration
	ShutdownTimeout time.Duration
}

// Deps зависимости сервера. Notifier может быть nil.
type Deps struct {
	Storage  storage.EntityStorage
	DB       handlers.Pinger
	Clock    handlers.Sequencer
	Notifier handlers.ChangeNotifier
	KV       kv.Store
	Limiter  *reliability.RateLimiter
	Logger   *slog.Logger
}

// sweeper реализуется хранилищами, которым нужна периодическая очистка
type sweeper interface {
	Sweep() int
}

// Server HTTP сервер синхронизации
type Server struct {
	httpServer *http.Server
	deps       Deps
	cfg        Config
}

// New creates a server with all routes mounted.
func New(cfg Config, deps Deps) (*Server, error) {
	switch {
	case deps.Storage == nil || deps.Clock == nil:
		return nil, errors.New("storage and clock are required")
	case deps.KV == nil:
		return nil, errors.New("kv store is required")
	case deps.Limiter == nil:
		return nil, errors.New("rate limiter is required")
	case deps.Logger == nil:
		return nil, errors.New("logger is required")
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = middleware.DefaultIdempotencyTTL
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{cfg: cfg, deps: deps}
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s, nil
}

// Routes строит дерево обработчиков:
// health без аутентификации; submit через auth, лимит и идемпотентность; fetch через auth и лимит.
func (s *Server) Routes() http.Handler {
	logger := s.deps.Logger

	sync := handlers.NewSyncHandler(logger, s.deps.Storage, s.deps.Clock, s.deps.Notifier)
	health := handlers.NewHealthHandler(logger, s.deps.DB)

	auth := middleware.AuthMiddleware(logger, s.cfg.JWT)
	limit := middleware.RateLimitMiddleware(s.deps.Limiter, logger)
	idem := middleware.IdempotencyMiddleware(s.deps.KV, s.cfg.IdempotencyTTL, logger)

	mux := http.NewServeMux()
	mux.HandleFunc(api.PathHealth, health.Health)
	mux.Handle(api.PathSubmit, chain(http.HandlerFunc(sync.HandleSubmit), auth, limit, idem))
	mux.Handle(api.PathFetch, chain(http.HandlerFunc(sync.HandleFetch), auth, limit))

	return chain(mux,
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger, api.PathHealth),
	)
}

// chain оборачивает h так, что первый middleware выполняется первым
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Run слушает cfg.Addr до отмены ctx
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve обслуживает ln до отмены ctx, затем корректно завершает работу
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	logger := s.deps.Logger

	scheduler := reliability.NewScheduler(logger)
	defer scheduler.Stop()
	if _, err := scheduler.Every("limiter-cleanup", maintenanceInterval, func(context.Context) {
		if n := s.deps.Limiter.Cleanup(); n > 0 {
			logger.Debug("Rate limiter cleanup", "removed", n)
		}
	}); err != nil {
		return err
	}
	if sw, ok := s.deps.KV.(sweeper); ok {
		if _, err := scheduler.Every("kv-sweep", maintenanceInterval, func(context.Context) {
			if n := sw.Sweep(); n > 0 {
				logger.Debug("Expired idempotency entries removed", "removed", n)
			}
		}); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server", "timeout", s.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	<-errCh
	return nil
}
