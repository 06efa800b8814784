package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/courtside/internal/store"
)

// factSource is the single per-(team, match) fact relation every per-game
// figure is drawn from: a game-log row joined to its own box score.
const factSource = `
		match_info mi
		JOIN match_stats ms ON ms.match_id = mi.match_id AND ms.team_id = mi.team_id
`

// AggregateRepository runs the grouping and aggregation queries
type AggregateRepository struct {
	db *store.Database
}

// NewAggregateRepository creates a new aggregate repository
func NewAggregateRepository(db *store.Database) *AggregateRepository {
	return &AggregateRepository{db: db}
}

// LeagueAverages holds unrounded means over every fact row. The averages are
// invalid when Rows is zero.
type LeagueAverages struct {
	Rows     int
	Points   sql.NullFloat64
	Assists  sql.NullFloat64
	Rebounds sql.NullFloat64
	Steals   sql.NullFloat64
	Blocks   sql.NullFloat64
	Turnover sql.NullFloat64
	Fouls    sql.NullFloat64
}

// TeamAverages holds one team's unrounded per-game averages
type TeamAverages struct {
	TeamID    string
	TeamName  string
	Games     int
	Points    float64
	Assists   float64
	Rebounds  float64
	Steals    float64
	Turnovers float64
	Blocks    float64
	Fouls     float64
}

// Cardinality counts rows on each side of the fact join
type Cardinality struct {
	MatchInfoRows  int `json:"match_info_rows"`
	MatchStatsRows int `json:"match_stats_rows"`
	FactRows       int `json:"fact_rows"`
}

// Consistent reports whether every game-log row pairs with exactly one box score
func (c Cardinality) Consistent() bool {
	return c.MatchInfoRows == c.MatchStatsRows && c.MatchStatsRows == c.FactRows
}

// SeasonTotals holds the season-wide counters
type SeasonTotals struct {
	Matches int64
	Dates   int64
	Minutes int64
	Points  int64
	FGM     int64
}

// WinLossRow is one team's record
type WinLossRow struct {
	TeamID   string
	TeamName string
	Wins     int
	Losses   int
}

// ShootingTotals holds one team's made/attempted sums
type ShootingTotals struct {
	TeamID   string
	TeamName string
	FGM      int64
	FGA      int64
	TPM      int64
	TPA      int64
	FTM      int64
	FTA      int64
}

// GetLeagueAverages averages every statistic over all fact rows
func (r *AggregateRepository) GetLeagueAverages(ctx context.Context) (*LeagueAverages, error) {
	query := `
		SELECT
			COUNT(*),
			AVG(mi.pts), AVG(ms.ast), AVG(ms.reb), AVG(ms.stl),
			AVG(ms.blk), AVG(ms.tov), AVG(ms.pf)
		FROM` + factSource

	avg := &LeagueAverages{}
	err := r.db.QueryRowContext(ctx, "league_averages", query).Scan(
		&avg.Rows, &avg.Points, &avg.Assists, &avg.Rebounds, &avg.Steals,
		&avg.Blocks, &avg.Turnover, &avg.Fouls,
	)
	if err != nil {
		return nil, fmt.Errorf("calculating league averages: %w", err)
	}

	return avg, nil
}

// GetTeamAverages averages every statistic per team in one pass over the fact rows
func (r *AggregateRepository) GetTeamAverages(ctx context.Context) ([]*TeamAverages, error) {
	query := `
		SELECT
			t.team_id, t.team_name, COUNT(*) AS games,
			AVG(mi.pts), AVG(ms.ast), AVG(ms.reb), AVG(ms.stl),
			AVG(ms.tov), AVG(ms.blk), AVG(ms.pf)
		FROM team_info t
		JOIN match_info mi ON mi.team_id = t.team_id
		JOIN match_stats ms ON ms.match_id = mi.match_id AND ms.team_id = mi.team_id
		GROUP BY t.team_id, t.team_name
		ORDER BY t.team_name
	`

	rows, err := r.db.QueryContext(ctx, "team_averages", query)
	if err != nil {
		return nil, fmt.Errorf("querying team averages: %w", err)
	}
	defer rows.Close()

	averages := make([]*TeamAverages, 0)
	for rows.Next() {
		a := &TeamAverages{}
		err := rows.Scan(
			&a.TeamID, &a.TeamName, &a.Games,
			&a.Points, &a.Assists, &a.Rebounds, &a.Steals,
			&a.Turnovers, &a.Blocks, &a.Fouls,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning team averages: %w", err)
		}
		averages = append(averages, a)
	}

	return averages, rows.Err()
}

// GetCardinality counts game-log rows, box-score rows and joined fact rows
func (r *AggregateRepository) GetCardinality(ctx context.Context) (*Cardinality, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM match_info),
			(SELECT COUNT(*) FROM match_stats),
			(SELECT COUNT(*) FROM` + factSource + `)
	`

	c := &Cardinality{}
	err := r.db.QueryRowContext(ctx, "fact_cardinality", query).Scan(
		&c.MatchInfoRows, &c.MatchStatsRows, &c.FactRows,
	)
	if err != nil {
		return nil, fmt.Errorf("counting fact rows: %w", err)
	}

	return c, nil
}

// GetSeasonTotals computes the season counters. Minutes are summed over
// distinct (match_id, min) pairs so both sides of a match count once; points
// are summed over every row.
func (r *AggregateRepository) GetSeasonTotals(ctx context.Context) (*SeasonTotals, error) {
	query := `
		SELECT
			(SELECT COUNT(DISTINCT match_id) FROM match_info),
			(SELECT COUNT(DISTINCT date_id) FROM game_dates),
			(SELECT COALESCE(SUM(dm.min), 0) FROM (SELECT DISTINCT match_id, min FROM match_info) dm),
			(SELECT COALESCE(SUM(pts), 0) FROM match_info),
			(SELECT COALESCE(SUM(fgm), 0) FROM match_stats)
	`

	t := &SeasonTotals{}
	err := r.db.QueryRowContext(ctx, "season_totals", query).Scan(
		&t.Matches, &t.Dates, &t.Minutes, &t.Points, &t.FGM,
	)
	if err != nil {
		return nil, fmt.Errorf("calculating season totals: %w", err)
	}

	return t, nil
}

// GetWinsLosses counts W and L results per team, most wins first
func (r *AggregateRepository) GetWinsLosses(ctx context.Context) ([]*WinLossRow, error) {
	query := `
		SELECT
			t.team_id, t.team_name,
			SUM(CASE WHEN mi.result = 'W' THEN 1 ELSE 0 END) AS wins,
			SUM(CASE WHEN mi.result = 'L' THEN 1 ELSE 0 END) AS losses
		FROM team_info t
		JOIN match_info mi ON mi.team_id = t.team_id
		GROUP BY t.team_id, t.team_name
		ORDER BY wins DESC, t.team_name
	`

	rows, err := r.db.QueryContext(ctx, "wins_losses", query)
	if err != nil {
		return nil, fmt.Errorf("querying wins and losses: %w", err)
	}
	defer rows.Close()

	records := make([]*WinLossRow, 0)
	for rows.Next() {
		rec := &WinLossRow{}
		if err := rows.Scan(&rec.TeamID, &rec.TeamName, &rec.Wins, &rec.Losses); err != nil {
			return nil, fmt.Errorf("scanning win/loss record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetShootingTotals sums made and attempted shots per team
func (r *AggregateRepository) GetShootingTotals(ctx context.Context) ([]*ShootingTotals, error) {
	query := `
		SELECT
			t.team_id, t.team_name,
			COALESCE(SUM(ms.fgm), 0), COALESCE(SUM(ms.fga), 0),
			COALESCE(SUM(ms.tpm), 0), COALESCE(SUM(ms.tpa), 0),
			COALESCE(SUM(ms.ftm), 0), COALESCE(SUM(ms.fta), 0)
		FROM team_info t
		JOIN match_stats ms ON ms.team_id = t.team_id
		GROUP BY t.team_id, t.team_name
		ORDER BY t.team_name
	`

	rows, err := r.db.QueryContext(ctx, "shooting_totals", query)
	if err != nil {
		return nil, fmt.Errorf("querying shooting totals: %w", err)
	}
	defer rows.Close()

	totals := make([]*ShootingTotals, 0)
	for rows.Next() {
		s := &ShootingTotals{}
		err := rows.Scan(&s.TeamID, &s.TeamName, &s.FGM, &s.FGA, &s.TPM, &s.TPA, &s.FTM, &s.FTA)
		if err != nil {
			return nil, fmt.Errorf("scanning shooting totals: %w", err)
		}
		totals = append(totals, s)
	}

	return totals, rows.Err()
}
