package websocket

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fortuna/courtside/internal/config"
	"github.com/fortuna/courtside/internal/metrics"
	"github.com/fortuna/courtside/internal/service"
	"github.com/fortuna/courtside/internal/store"
)

// Server represents the WebSocket server
type Server struct {
	server       *http.Server
	hub          *Hub
	resolver     *service.MatchupResolver
	upgrader     websocket.Upgrader
	metrics      *metrics.Manager
	logger       *slog.Logger
	queryTimeout time.Duration
	handler      http.Handler
}

// NewServer creates a new WebSocket server and starts its hub
func NewServer(cfg *config.Config, db *store.Database, m *metrics.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		hub:          NewHub(),
		resolver:     service.NewMatchupResolver(db),
		metrics:      m,
		logger:       logger,
		queryTimeout: cfg.QueryTimeout,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.AllowedOrigins()),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/selection", s.handleSelection)
	mux.HandleFunc("/ws/health", s.handleHealth)
	s.handler = mux

	s.server = &http.Server{
		Addr:              cfg.WSAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go s.hub.Run()
	return s
}

// Handler returns the HTTP handler serving the WebSocket routes
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the WebSocket server
func (s *Server) Start() error {
	s.logger.Info("websocket server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// handleSelection upgrades a dashboard connection into a selection session
func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("failed to upgrade connection", "error", err)
		return
	}

	session := newSession(s, conn)
	if !s.hub.add(session) {
		conn.Close()
		return
	}
	s.metrics.SessionOpened()
	s.logger.Debug("selection session opened", "session_id", session.ID())

	go session.pingPump()
	go session.readPump()
}

// handleHealth returns WebSocket server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"healthy","sessions":%d}`, s.hub.ClientCount())
}

// Shutdown stops accepting connections and closes every open session
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}
	s.hub.Stop()
	return err
}

// originChecker allows requests without an Origin header and those whose
// origin is listed. "*" allows any origin.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(strings.ToLower(o), "/")] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		_, ok := set[strings.ToLower(u.Scheme+"://"+u.Host)]
		return ok
	}
}
