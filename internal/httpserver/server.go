package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"libracatalog/internal/circulation"
	"libracatalog/internal/config"
	"libracatalog/internal/httpmw"
	"libracatalog/internal/logger"
)

// Server wraps the HTTP server and its router.
type Server struct {
	http   *http.Server
	logger logger.Logger
}

// New builds the router, its middlewares and the catalog routes.
func New(cfg *config.Config, log logger.Logger, svc circulation.Service) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(httpmw.Log(log))
	r.Use(httpmw.RateLimit(cfg.RateLimit, cfg.RateBurst))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	circulation.NewHandler(svc).Routes(r)

	return &Server{
		http: &http.Server{
			Addr:              cfg.ListenPort,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		logger: log,
	}
}

func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start blocks until the server fails or is shut down.
func (s *Server) Start() error {
	s.logger.Infof("HTTP server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop drains in-flight requests until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down...")
	return s.http.Shutdown(ctx)
}
