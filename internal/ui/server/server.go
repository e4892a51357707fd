package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tradebot/dashboard/internal/apperrors"
	"github.com/tradebot/dashboard/internal/logger"
	"github.com/tradebot/dashboard/internal/ui/client"
	"github.com/tradebot/dashboard/internal/ui/config"
	"github.com/tradebot/dashboard/internal/ui/handlers"
	"github.com/tradebot/dashboard/internal/ui/proxy"
	"github.com/tradebot/dashboard/internal/ui/responses"
	"github.com/tradebot/dashboard/internal/ui/templates"
)

const (
	// ServerShutdownTimeout is the timeout for graceful server shutdown
	ServerShutdownTimeout = 10 * time.Second

	// RequestTimeout is the maximum time a ui request (including the calls to the trading bot API) may take
	RequestTimeout = 60 * time.Second
)

type Server struct {
	router   *chi.Mux
	config   *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	handlers *handlers.HandlerService

	// path prefixes forwarded to the trading bot API, empty when the proxy is disabled
	proxyPrefixes []string
}

// NewServer creates the ui server and the trading bot API client it uses
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	clientMetrics, err := client.NewMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register api client metrics: %w", err)
	}

	apiClient, err := client.NewClient(cfg.ClientConfig(),
		client.RequestID(),
		client.Logging(logger),
		clientMetrics.Middleware(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	normalizer, err := client.NewNormalizerForCode(cfg.Language)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		registry: registry,
		handlers: &handlers.HandlerService{
			ApiClient:   apiClient,
			Normalizer:  normalizer,
			Environment: cfg.Environment,
		},
	}
	if cfg.APIProxyEnabled {
		s.proxyPrefixes = proxyPrefixes(apiClient.APIRoot())
	}

	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	if err := s.registerRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

// Handler returns the router - used by tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() error {
	httpMetrics, err := newHTTPMetrics(s.registry)
	if err != nil {
		return fmt.Errorf("failed to register http metrics: %w", err)
	}

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(logger.RequestLogging(s.logger, s.proxyPrefixes...))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(httpMetrics.middleware)
	s.router.Use(SecurityHeaders(s.config.Environment))
	s.router.Use(RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst))
	s.router.Use(chimiddleware.Timeout(RequestTimeout))
	return nil
}

func (s *Server) registerRoutes() error {
	h := s.handlers

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responses.RespondWithError(w, r, http.StatusNotFound, apperrors.ErrCodeResourceNotFound, "Not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		responses.RespondWithError(w, r, http.StatusMethodNotAllowed, apperrors.ErrCodeMethodNotAllowed,
			fmt.Sprintf("Method %s is not allowed on %s", r.Method, r.URL.Path))
	})

	// ops
	s.router.Get("/health/live", h.LivenessHandler)
	s.router.Get("/version", h.VersionHandler)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// static assets
	s.router.Handle("/static/highlight.css", templates.HighlightCSS())
	s.router.Handle("/static/*", http.StripPrefix("/static/", templates.StaticHandler()))

	s.router.Get("/", h.DashboardHandler)

	// UI API endpoints (return html fragments)
	s.router.Route("/ui-api", func(r chi.Router) {
		r.Use(RequestSizeLimit(s.config.MaxRequestSize))

		r.Get("/status", h.StatusPanelHandler)
		r.Get("/stats", h.StatsPanelHandler)
		r.Get("/jobs", h.JobsPanelHandler)
		r.Post("/jobs", h.AddJobHandler)
		r.Delete("/jobs/{id}", h.RemoveJobHandler)
		r.Get("/trades", h.TradesPanelHandler)
		r.Post("/trade", h.ExecuteTradeHandler)
		r.Post("/predict", h.PredictHandler)
		r.Get("/config", h.ConfigPanelHandler)
		r.Post("/config", h.SaveConfigHandler)
		r.Post("/train", h.TrainModelHandler)
	})

	if len(s.proxyPrefixes) == 0 {
		return nil
	}

	apiProxy, err := proxy.NewAPIProxy(s.config.APIBaseURL, s.logger)
	if err != nil {
		return err
	}
	corsMiddleware, err := s.config.NewCORS()
	if err != nil {
		return err
	}

	s.router.Group(func(r chi.Router) {
		r.Use(CORS(corsMiddleware))
		r.Use(RequestSizeLimit(s.config.MaxRequestSize))
		for _, prefix := range s.proxyPrefixes {
			r.Handle(prefix, apiProxy)
			r.Handle(prefix+"/*", apiProxy)
		}
	})
	return nil
}

// proxyPrefixes returns the paths the proxy forwards for apiRoot.
// Without an api root only the endpoint paths are forwarded so the dashboard routes stay with the ui.
func proxyPrefixes(apiRoot string) []string {
	if apiRoot != "" {
		return []string{apiRoot}
	}

	var prefixes []string
	for _, e := range client.Endpoints() {
		prefixes = append(prefixes, strings.TrimPrefix(e.Path(), client.DefaultAPIRoot))
	}
	return prefixes
}

// Start the UI server
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("UI server listening", slog.String("address", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		s.logger.Info("Shutting down UI server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ServerShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
			return err
		}
	}

	return nil
}
