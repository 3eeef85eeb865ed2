package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"swaprouter/native/router"
	"swaprouter/observability"
)

// Config defines HTTP server parameters.
type Config struct {
	ListenAddress string
	AdminToken    string
	RateLimit     RateLimit
	ShutdownGrace time.Duration
}

// Server hosts the settlement, registry and admin endpoints for routerd.
type Server struct {
	cfg     Config
	engine  *router.Engine
	logger  *slog.Logger
	auth    *Authenticator
	limiter *RateLimiter
	metrics *observability.RouterMetrics
}

// New constructs the HTTP server around a wired engine.
func New(cfg Config, engine *router.Engine, logger *slog.Logger) (*Server, error) {
	auth, err := NewAuthenticator(cfg.AdminToken)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		engine:  engine,
		logger:  logger,
		auth:    auth,
		limiter: NewRateLimiter(cfg.RateLimit),
		metrics: observability.Metrics(),
	}, nil
}

// Handler assembles the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limiter.Middleware)

		r.Post("/settle/token-to-token", s.handleTokenToToken)
		r.Post("/settle/eth-to-token", s.handleEthToToken)
		r.Post("/settle/token-to-eth", s.handleTokenToEth)

		r.Get("/owner", s.handleOwner)
		r.Get("/targets/{address}", s.handleTargetLookup)
		r.Get("/signers/{address}", s.handleSignerLookup)

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.auth.Middleware)
			r.Post("/targets", s.handleUpdateTargets)
			r.Post("/signers", s.handleUpdateSigners)
			r.Post("/withdraw/token", s.handleWithdrawToken)
			r.Post("/withdraw/eth", s.handleWithdrawEth)
			r.Post("/ownership", s.handleTransferOwnership)
		})
	})

	return otelhttp.NewHandler(r, "routerd")
}

// Run serves until the context is cancelled, then drains connections within
// the configured grace period.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.cfg.ListenAddress)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	grace := s.cfg.ShutdownGrace
	if grace <= 0 {
		grace = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
