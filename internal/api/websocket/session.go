package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/fortuna/courtside/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Inbound message types
const (
	TypeSelectTeams   = "select_teams"
	TypeSelectMatches = "select_matches"
	TypeReset         = "reset"
)

// Request is a message from the dashboard
type Request struct {
	Type     string   `json:"type"`
	TeamA    string   `json:"team_a,omitempty"`
	TeamB    string   `json:"team_b,omitempty"`
	MatchIDs []string `json:"match_ids,omitempty"`
}

// Response answers every Request with the session's new state
type Response struct {
	SessionID  string                   `json:"session_id"`
	State      service.SelectionState   `json:"state"`
	Matches    *service.Matchup         `json:"matches,omitempty"`
	Pair       *service.MatchupPair     `json:"pair,omitempty"`
	GameDate   string                   `json:"game_date,omitempty"`
	Comparison []service.StatComparison `json:"comparison,omitempty"`
	Message    string                   `json:"message,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

// Session is one dashboard connection driving its own selection
type Session struct {
	id        string
	server    *Server
	conn      *websocket.Conn
	selection *service.Selection

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
}

func newSession(s *Server, conn *websocket.Conn) *Session {
	return &Session{
		id:        uuid.NewString(),
		server:    s,
		conn:      conn,
		selection: service.NewSelection(s.resolver),
		closed:    make(chan struct{}),
	}
}

// ID returns the session id
func (s *Session) ID() string { return s.id }

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.conn.Close()
	})
}

// readPump handles requests in order until the connection drops
func (s *Session) readPump() {
	defer func() {
		s.server.hub.remove(s)
		s.server.metrics.SessionClosed()
		s.close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.server.logger.Warn("selection session read failed", "session_id", s.id, "error", err)
			}
			return
		}

		var req Request
		var resp Response
		if err := json.Unmarshal(data, &req); err != nil {
			resp = s.errorResponse(errors.New("malformed message"))
		} else {
			resp = s.handle(req)
		}

		if err := s.write(resp); err != nil {
			return
		}
	}
}

// pingPump keeps the connection alive until the session closes
func (s *Session) pingPump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.writeMu.Lock()
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := s.conn.WriteMessage(websocket.PingMessage, nil)
			s.writeMu.Unlock()
			if err != nil {
				s.close()
				return
			}
		case <-s.closed:
			return
		}
	}
}

func (s *Session) write(resp Response) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(resp)
}

// handle applies one request to the selection
func (s *Session) handle(req Request) Response {
	ctx, cancel := s.server.queryContext()
	defer cancel()

	switch req.Type {
	case TypeSelectTeams:
		if err := s.selection.ChooseTeams(req.TeamA, req.TeamB); err != nil {
			return s.errorResponse(err)
		}
		m, err := s.selection.ListMatches(ctx)
		if err != nil {
			return s.errorResponse(err)
		}
		resp := s.response()
		resp.Matches = m
		return resp

	case TypeSelectMatches:
		result, err := s.selection.SelectMatches(ctx, req.MatchIDs)
		if err != nil {
			return s.errorResponse(err)
		}
		resp := s.response()
		resp.Pair = result.Pair
		resp.GameDate = result.GameDate
		resp.Comparison = result.Comparison
		resp.Message = result.Message
		return resp

	case TypeReset:
		s.selection.Reset()
		return s.response()

	default:
		return s.errorResponse(errors.New("unknown message type " + req.Type))
	}
}

func (s *Session) response() Response {
	return Response{SessionID: s.id, State: s.selection.State()}
}

func (s *Session) errorResponse(err error) Response {
	resp := s.response()
	resp.Error = err.Error()
	return resp
}

func (s *Server) queryContext() (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), s.queryTimeout)
}
