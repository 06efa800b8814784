package websocket

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/fortuna/courtside/internal/config"
	"github.com/fortuna/courtside/internal/store/storetest"
)

type wireResponse struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
	Matches   *struct {
		MatchIDs []string `json:"match_ids"`
	} `json:"matches"`
	Pair *struct {
		Home struct {
			TeamID string `json:"team_id"`
		} `json:"home"`
	} `json:"pair"`
	GameDate   string        `json:"game_date"`
	Comparison []interface{} `json:"comparison"`
	Message    string        `json:"message"`
	Error      string        `json:"error"`
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	db := storetest.Open(t)
	storetest.Season(t, db)

	s := NewServer(config.New(), db, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.hub.Stop()
	})
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/selection"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, req Request) wireResponse {
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("writing %v: %v", req, err)
	}
	var resp wireResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("reading response: %v", err)
	}
	return resp
}

func TestSelectionSession(t *testing.T) {
	Convey("Given a connected selection session", t, func() {
		_, ts := newTestServer(t)
		conn := dial(t, ts)

		Convey("When teams are chosen", func() {
			resp := roundTrip(t, conn, Request{Type: TypeSelectTeams, TeamA: "BOS", TeamB: "PHI"})

			Convey("Then their matches are listed", func() {
				So(resp.Error, ShouldBeEmpty)
				So(resp.SessionID, ShouldNotBeEmpty)
				So(resp.State, ShouldEqual, "matches_listed")
				So(resp.Matches.MatchIDs, ShouldResemble, []string{storetest.MatchPHIatBOS, storetest.MatchBOSatPHI})
			})

			Convey("Then one match can be analysed", func() {
				resp := roundTrip(t, conn, Request{Type: TypeSelectMatches, MatchIDs: []string{storetest.MatchPHIatBOS}})
				So(resp.Error, ShouldBeEmpty)
				So(resp.State, ShouldEqual, "one_selected")
				So(resp.Pair.Home.TeamID, ShouldEqual, "BOS")
				So(resp.GameDate, ShouldEqual, "2022-10-18")
				So(resp.Comparison, ShouldHaveLength, 15)
			})

			Convey("Then selecting nothing returns the advisory message", func() {
				resp := roundTrip(t, conn, Request{Type: TypeSelectMatches})
				So(resp.State, ShouldEqual, "zero_selected")
				So(resp.Message, ShouldNotBeEmpty)
			})

			Convey("Then the session id is stable and reset starts over", func() {
				reset := roundTrip(t, conn, Request{Type: TypeReset})
				So(reset.SessionID, ShouldEqual, resp.SessionID)
				So(reset.State, ShouldEqual, "no_selection")
			})
		})

		Convey("When matches are selected first", func() {
			resp := roundTrip(t, conn, Request{Type: TypeSelectMatches, MatchIDs: []string{storetest.MatchPHIatBOS}})

			Convey("Then the step is refused and the state kept", func() {
				So(resp.Error, ShouldNotBeEmpty)
				So(resp.State, ShouldEqual, "no_selection")
			})
		})

		Convey("When an unknown message arrives", func() {
			resp := roundTrip(t, conn, Request{Type: "shout"})

			Convey("Then an error is returned", func() {
				So(resp.Error, ShouldContainSubstring, "unknown message type")
			})
		})
	})
}

func TestHealth(t *testing.T) {
	Convey("Given a server with one open session", t, func() {
		s, ts := newTestServer(t)
		dial(t, ts)

		Convey("When the health endpoint is polled", func() {
			deadline := time.Now().Add(2 * time.Second)
			for s.hub.ClientCount() != 1 && time.Now().Before(deadline) {
				time.Sleep(10 * time.Millisecond)
			}
			resp, err := http.Get(ts.URL + "/ws/health")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			Convey("Then the session is counted", func() {
				So(string(body), ShouldContainSubstring, `"sessions":1`)
			})
		})
	})
}

func TestOriginChecker(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"wildcard", []string{"*"}, "http://any.example", true},
		{"no origin header", []string{"http://a.example"}, "", true},
		{"listed", []string{"http://a.example"}, "http://a.example", true},
		{"listed with trailing slash", []string{"http://a.example/"}, "http://A.example", true},
		{"not listed", []string{"http://a.example"}, "http://b.example", false},
		{"empty list", nil, "http://a.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws/selection", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := originChecker(tt.allowed)(r); got != tt.want {
				t.Errorf("originChecker(%v)(%q) = %v, want %v", tt.allowed, tt.origin, got, tt.want)
			}
		})
	}
}
