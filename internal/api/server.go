package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"stocksense/internal/api/health"
	"stocksense/internal/api/ws"
	"stocksense/internal/metrics"
	"stocksense/pkg/errors"
	"stocksense/pkg/logger"
)

// ServerConfig contains configuration for the HTTP server
type ServerConfig struct {
	Port        int
	ServiceName string
	Version     string
}

// Server wraps the HTTP server with lifecycle management
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// NewServer creates and configures the HTTP server with all routes
func NewServer(cfg ServerConfig, handlers *Handlers, healthHandler *health.Handler, hub *ws.Hub, log *logger.Logger) *Server {
	mux := http.NewServeMux()

	// Health check endpoints (Kubernetes probes)
	mux.HandleFunc("/health", healthHandler.HandleHealth)
	mux.HandleFunc("/ready", healthHandler.HandleReadiness)
	mux.HandleFunc("/live", healthHandler.HandleLiveness)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", metrics.Handler())

	// Action and notification stream
	mux.Handle("/ws", hub)

	// Search tracking and user model
	mux.HandleFunc("POST /api/search", handlers.HandleSearch)
	mux.HandleFunc("GET /api/search/history", handlers.HandleSearchHistory)
	mux.HandleFunc("GET /api/define", handlers.HandleDefine)
	mux.HandleFunc("GET /api/profile", handlers.HandleProfile)
	mux.HandleFunc("POST /api/profile/reset", handlers.HandleProfileReset)
	mux.HandleFunc("POST /api/profile/simulate", handlers.HandleSimulate)
	mux.HandleFunc("GET /api/insights", handlers.HandleInsights)
	mux.HandleFunc("POST /api/track/click", handlers.HandleClick)
	mux.HandleFunc("POST /api/track/section", handlers.HandleSection)

	// Market data
	mux.HandleFunc("GET /api/snapshot", handlers.HandleSnapshot)
	mux.HandleFunc("GET /api/stocks", handlers.HandleStocks)
	mux.HandleFunc("GET /api/sectors", handlers.HandleSectors)
	mux.HandleFunc("GET /api/movers", handlers.HandleMovers)
	mux.HandleFunc("GET /api/quote", handlers.HandleQuote)
	mux.HandleFunc("GET /api/news", handlers.HandleNews)
	mux.HandleFunc("GET /api/insiders", handlers.HandleInsiders)
	mux.HandleFunc("GET /api/earnings", handlers.HandleEarnings)
	mux.HandleFunc("POST /api/market/preset", handlers.HandleMarketPreset)

	// Agent loop
	mux.HandleFunc("POST /api/agent/start", handlers.HandleAgentStart)
	mux.HandleFunc("POST /api/agent/stop", handlers.HandleAgentStop)
	mux.HandleFunc("GET /api/agent/state", handlers.HandleAgentState)

	// Focus timer
	mux.HandleFunc("GET /api/focus/session", handlers.HandleFocusSession)
	mux.HandleFunc("POST /api/focus/session", handlers.HandleFocusStart)
	mux.HandleFunc("DELETE /api/focus/session", handlers.HandleFocusStop)
	mux.HandleFunc("GET /api/focus/settings", handlers.HandleFocusSettings)
	mux.HandleFunc("PUT /api/focus/settings", handlers.HandleFocusSettingsUpdate)
	mux.HandleFunc("GET /api/focus/stats", handlers.HandleFocusStats)
	mux.HandleFunc("GET /api/focus/attention", handlers.HandleFocusAttention)
	mux.HandleFunc("POST /api/focus/activity", handlers.HandleFocusActivity)
	mux.HandleFunc("POST /api/focus/tabswitch", handlers.HandleFocusTabSwitch)

	// Layout
	mux.HandleFunc("GET /api/layout", handlers.HandleLayout)
	mux.HandleFunc("PUT /api/layout", handlers.HandleLayoutUpdate)
	mux.HandleFunc("POST /api/layout/preset", handlers.HandleLayoutPreset)

	// Root endpoint (service info)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"service":"%s","version":"%s","status":"running"}`,
			cfg.ServiceName, cfg.Version)
	})

	port := 8080
	if cfg.Port > 0 {
		port = cfg.Port
	}

	log.Infof("HTTP server configured on port %d", port)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		log:        log,
	}
}

// Start begins listening for HTTP requests
// Blocks until the server is stopped or encounters an error
func (s *Server) Start() error {
	s.log.Infof("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "http server failed")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
// Waits for active connections to complete within timeout
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Stopping HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "http server shutdown failed")
	}

	s.log.Info("HTTP server stopped")
	return nil
}
