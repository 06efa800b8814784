// Package storetest builds throwaway in-memory stores for tests.
package storetest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/fortuna/courtside/internal/store"
)

const schema = `
CREATE TABLE team_info (
	team_id   TEXT PRIMARY KEY,
	team_name TEXT NOT NULL
);
CREATE TABLE game_dates (
	date_id   INTEGER PRIMARY KEY,
	game_date TEXT
);
CREATE TABLE match_info (
	match_id TEXT NOT NULL,
	team_id  TEXT NOT NULL,
	pts      INTEGER NOT NULL,
	min      INTEGER NOT NULL,
	result   TEXT NOT NULL,
	date_id  INTEGER NOT NULL
);
CREATE TABLE match_stats (
	match_id TEXT NOT NULL,
	team_id  TEXT NOT NULL,
	fgm  INTEGER NOT NULL, fga  INTEGER NOT NULL,
	tpm  INTEGER NOT NULL, tpa  INTEGER NOT NULL,
	ftm  INTEGER NOT NULL, fta  INTEGER NOT NULL,
	oreb INTEGER NOT NULL, dreb INTEGER NOT NULL, reb INTEGER NOT NULL,
	ast  INTEGER NOT NULL, tov  INTEGER NOT NULL, stl INTEGER NOT NULL,
	blk  INTEGER NOT NULL, pf   INTEGER NOT NULL
);
`

type options struct {
	homeFlag bool
	observer store.QueryObserver
}

// Option tunes the store Open creates
type Option func(*options)

// WithHomeFlag adds an is_home column to match_info
func WithHomeFlag() Option {
	return func(o *options) { o.homeFlag = true }
}

// WithObserver installs a query observer on the store
func WithObserver(obs store.QueryObserver) Option {
	return func(o *options) { o.observer = obs }
}

// Open creates an empty in-memory store with the season schema. The store is
// closed when the test ends.
func Open(t testing.TB, opts ...Option) *store.Database {
	t.Helper()

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	db, err := store.NewDatabase(store.DriverSQLite, ":memory:", store.Options{Observer: o.observer})
	if err != nil {
		t.Fatalf("opening in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	exec(t, db, schema)
	if o.homeFlag {
		exec(t, db, "ALTER TABLE match_info ADD COLUMN is_home INTEGER")
	}

	if _, err := db.VerifySchema(context.Background()); err != nil {
		t.Fatalf("verifying schema: %v", err)
	}
	return db
}

// Side is one team's game-log row and box score for a match. Rebounds are
// derived from the offensive and defensive counts when left zero.
type Side struct {
	MatchID string
	TeamID  string
	DateID  int
	Points  int
	Minutes int
	Result  string
	IsHome  *bool
	Box     store.MatchStats
}

// InsertTeam adds a team_info row
func InsertTeam(t testing.TB, db *store.Database, id, name string) {
	t.Helper()
	exec(t, db, "INSERT INTO team_info (team_id, team_name) VALUES (?, ?)", id, name)
}

// InsertGameDate adds a game_dates row
func InsertGameDate(t testing.TB, db *store.Database, id int, date string) {
	t.Helper()
	exec(t, db, "INSERT INTO game_dates (date_id, game_date) VALUES (?, ?)", id, date)
}

// InsertSide adds both the match_info and match_stats rows of a side
func InsertSide(t testing.TB, db *store.Database, s Side) {
	t.Helper()
	InsertMatchInfo(t, db, s)
	InsertMatchStats(t, db, s)
}

// InsertMatchInfo adds only the game-log row of a side
func InsertMatchInfo(t testing.TB, db *store.Database, s Side) {
	t.Helper()
	if db.Schema().HasHomeFlag {
		var home sql.NullBool
		if s.IsHome != nil {
			home = sql.NullBool{Bool: *s.IsHome, Valid: true}
		}
		exec(t, db, `INSERT INTO match_info (match_id, team_id, pts, min, result, date_id, is_home)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.MatchID, s.TeamID, s.Points, s.Minutes, s.Result, s.DateID, home)
		return
	}
	exec(t, db, `INSERT INTO match_info (match_id, team_id, pts, min, result, date_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.MatchID, s.TeamID, s.Points, s.Minutes, s.Result, s.DateID)
}

// InsertMatchStats adds only the box-score row of a side
func InsertMatchStats(t testing.TB, db *store.Database, s Side) {
	t.Helper()
	b := s.Box
	reb := b.Rebounds
	if reb == 0 {
		reb = b.OffensiveRebounds + b.DefensiveRebounds
	}
	exec(t, db, `INSERT INTO match_stats
		(match_id, team_id, fgm, fga, tpm, tpa, ftm, fta, oreb, dreb, reb, ast, tov, stl, blk, pf)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.MatchID, s.TeamID,
		b.FieldGoalsMade, b.FieldGoalsAttempted,
		b.ThreePointersMade, b.ThreePointersAttempted,
		b.FreeThrowsMade, b.FreeThrowsAttempted,
		b.OffensiveRebounds, b.DefensiveRebounds, reb,
		b.Assists, b.Turnovers, b.Steals, b.Blocks, b.PersonalFouls)
}

func exec(t testing.TB, db *store.Database, query string, args ...interface{}) {
	t.Helper()
	if _, err := db.DB().ExecContext(context.Background(), query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

// Bool returns a pointer to v
func Bool(v bool) *bool { return &v }
