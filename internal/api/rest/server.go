package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	corslib "github.com/rs/cors"

	"github.com/fortuna/courtside/internal/cache"
	"github.com/fortuna/courtside/internal/config"
	"github.com/fortuna/courtside/internal/metrics"
	"github.com/fortuna/courtside/internal/store"
)

// Dependencies are the collaborators the REST server is built from. Memo,
// Cache and Metrics may be nil.
type Dependencies struct {
	DB      *store.Database
	Memo    *cache.Memo
	Cache   HealthChecker
	Metrics *metrics.Manager
	Logger  *slog.Logger
}

// Server represents the REST API server
type Server struct {
	server  *http.Server
	handler http.Handler
}

// NewServer creates a new REST API server
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	handler := NewHandler(deps.DB, deps.Memo, deps.Cache, cfg.QueryTimeout)

	router := mux.NewRouter()

	// Route-level middleware runs only for matched routes
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggingMiddleware(logger, deps.Metrics))

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	router.Handle("/metrics", deps.Metrics.Handler()).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// League
	api.HandleFunc("/league/means", handler.GetLeagueMeans).Methods("GET")
	api.HandleFunc("/league/totals", handler.GetLeagueTotals).Methods("GET")

	// Teams
	api.HandleFunc("/teams", handler.GetTeams).Methods("GET")
	api.HandleFunc("/teams/stats", handler.GetTeamStats).Methods("GET")
	api.HandleFunc("/teams/records", handler.GetTeamRecords).Methods("GET")
	api.HandleFunc("/teams/shooting", handler.GetTeamShooting).Methods("GET")

	// Matchups
	api.HandleFunc("/matchups", handler.GetMatchups).Methods("GET")
	api.HandleFunc("/matchups/resolve", handler.ResolveMatchup).Methods("GET")

	// Outer middleware wraps the whole router so CORS preflights and
	// rate-limit rejections apply to unmatched paths too
	var h http.Handler = router
	h = middleware.Compress(5)(h)
	if cfg.RateLimitEnabled {
		h = RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow)(h)
	}
	h = corslib.New(corslib.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time"},
		AllowCredentials: false,
	}).Handler(h)
	h = TimingMiddleware(h)
	h = middleware.RealIP(h)
	h = PeerMiddleware(h)
	h = middleware.RequestID(h)

	return &Server{
		handler: h,
		server: &http.Server{
			Addr:              cfg.RESTAddr,
			Handler:           h,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
