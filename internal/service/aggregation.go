package service

import (
	"context"
	"math"
	"sort"

	"github.com/fortuna/courtside/internal/store"
	"github.com/fortuna/courtside/internal/store/repository"
)

// Per-game statistic keys, in the order they are presented
const (
	StatPoints    = "ppg"
	StatAssists   = "astpg"
	StatRebounds  = "rebpg"
	StatSteals    = "stlpg"
	StatTurnovers = "tovpg"
	StatBlocks    = "blkpg"
	StatFouls     = "pfpg"
)

// AggregationEngine computes team and league figures for summary views
type AggregationEngine struct {
	aggregates *repository.AggregateRepository
	teams      *repository.TeamRepository
}

// NewAggregationEngine creates a new aggregation engine
func NewAggregationEngine(db *store.Database) *AggregationEngine {
	return &AggregationEngine{
		aggregates: repository.NewAggregateRepository(db),
		teams:      repository.NewTeamRepository(db),
	}
}

// MeanValues are league-wide averages over every per-match row
type MeanValues struct {
	AvgPts float64 `json:"avg_pts"`
	AvgAst float64 `json:"avg_ast"`
	AvgReb float64 `json:"avg_reb"`
	AvgStl float64 `json:"avg_stl"`
	AvgBlk float64 `json:"avg_blk"`
	AvgTov float64 `json:"avg_tov"`
	AvgPf  float64 `json:"avg_pf"`
}

// TeamValue is one team's entry in a per-game ranking
type TeamValue struct {
	TeamID    string  `json:"team_id"`
	TeamName  string  `json:"team_name"`
	Value     float64 `json:"value"`
	AboveMean bool    `json:"above_mean"`
}

// PerGameSeries ranks teams by one per-game statistic, highest first
type PerGameSeries struct {
	Stat  string      `json:"stat"`
	Mean  float64     `json:"mean"`
	Teams []TeamValue `json:"teams"`
}

// TeamStats holds the seven per-game rankings
type TeamStats struct {
	PPG   PerGameSeries `json:"ppg"`
	ASTPG PerGameSeries `json:"astpg"`
	REBPG PerGameSeries `json:"rebpg"`
	STLPG PerGameSeries `json:"stlpg"`
	TOVPG PerGameSeries `json:"tovpg"`
	BLKPG PerGameSeries `json:"blkpg"`
	PFPG  PerGameSeries `json:"pfpg"`
}

// Series returns the rankings in presentation order
func (t *TeamStats) Series() []PerGameSeries {
	return []PerGameSeries{t.PPG, t.ASTPG, t.REBPG, t.STLPG, t.TOVPG, t.BLKPG, t.PFPG}
}

// Totals are the season-wide counters
type Totals struct {
	TotMatches int64 `json:"tot_matches"`
	TotDates   int64 `json:"tot_dates"`
	TotMinutes int64 `json:"tot_minutes"`
	TotPts     int64 `json:"tot_pts"`
	TotFGM     int64 `json:"tot_fgm"`
}

// WinLoss is one team's season record
type WinLoss struct {
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
}

// ShootingSplit holds a team's shooting percentages. A nil percentage means
// the team attempted no shots of that kind.
type ShootingSplit struct {
	TeamID   string   `json:"team_id"`
	TeamName string   `json:"team_name"`
	FGPct    *float64 `json:"fg_pct"`
	TPPct    *float64 `json:"tp_pct"`
	FTPct    *float64 `json:"ft_pct"`
}

// MeanValues averages each statistic over all per-match rows
func (e *AggregationEngine) MeanValues(ctx context.Context) (*MeanValues, error) {
	const op = "mean values"

	avg, err := e.aggregates.GetLeagueAverages(ctx)
	if err != nil {
		return nil, storeError(op, err)
	}
	if avg.Rows == 0 || !avg.Points.Valid {
		return nil, errorf(op, ErrNoData, "no match rows in store")
	}

	return &MeanValues{
		AvgPts: round2(avg.Points.Float64),
		AvgAst: round2(avg.Assists.Float64),
		AvgReb: round2(avg.Rebounds.Float64),
		AvgStl: round2(avg.Steals.Float64),
		AvgBlk: round2(avg.Blocks.Float64),
		AvgTov: round2(avg.Turnover.Float64),
		AvgPf:  round2(avg.Fouls.Float64),
	}, nil
}

// CheckCardinality verifies that every game-log row pairs with exactly one box score
func (e *AggregationEngine) CheckCardinality(ctx context.Context) (*repository.Cardinality, error) {
	const op = "check cardinality"

	c, err := e.aggregates.GetCardinality(ctx)
	if err != nil {
		return nil, storeError(op, err)
	}
	if !c.Consistent() {
		return c, errorf(op, ErrCardinalityMismatch,
			"match_info=%d match_stats=%d joined=%d", c.MatchInfoRows, c.MatchStatsRows, c.FactRows)
	}
	return c, nil
}

// TeamStats computes the seven per-game rankings from one pass over the fact
// rows. Points and box-score figures share the same join, and the join is
// checked for 1:1 cardinality first.
func (e *AggregationEngine) TeamStats(ctx context.Context) (*TeamStats, error) {
	const op = "team stats"

	if _, err := e.CheckCardinality(ctx); err != nil {
		return nil, err
	}

	averages, err := e.aggregates.GetTeamAverages(ctx)
	if err != nil {
		return nil, storeError(op, err)
	}

	return &TeamStats{
		PPG:   buildSeries(StatPoints, averages, func(a *repository.TeamAverages) float64 { return a.Points }),
		ASTPG: buildSeries(StatAssists, averages, func(a *repository.TeamAverages) float64 { return a.Assists }),
		REBPG: buildSeries(StatRebounds, averages, func(a *repository.TeamAverages) float64 { return a.Rebounds }),
		STLPG: buildSeries(StatSteals, averages, func(a *repository.TeamAverages) float64 { return a.Steals }),
		TOVPG: buildSeries(StatTurnovers, averages, func(a *repository.TeamAverages) float64 { return a.Turnovers }),
		BLKPG: buildSeries(StatBlocks, averages, func(a *repository.TeamAverages) float64 { return a.Blocks }),
		PFPG:  buildSeries(StatFouls, averages, func(a *repository.TeamAverages) float64 { return a.Fouls }),
	}, nil
}

// TotalStats returns the season counters. An empty store yields zeros.
func (e *AggregationEngine) TotalStats(ctx context.Context) (*Totals, error) {
	t, err := e.aggregates.GetSeasonTotals(ctx)
	if err != nil {
		return nil, storeError("total stats", err)
	}

	return &Totals{
		TotMatches: t.Matches,
		TotDates:   t.Dates,
		TotMinutes: t.Minutes,
		TotPts:     t.Points,
		TotFGM:     t.FGM,
	}, nil
}

// WinsLosses returns every team's record, most wins first
func (e *AggregationEngine) WinsLosses(ctx context.Context) ([]WinLoss, error) {
	rows, err := e.aggregates.GetWinsLosses(ctx)
	if err != nil {
		return nil, storeError("wins losses", err)
	}

	records := make([]WinLoss, 0, len(rows))
	for _, r := range rows {
		records = append(records, WinLoss{TeamID: r.TeamID, TeamName: r.TeamName, Wins: r.Wins, Losses: r.Losses})
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Wins != records[j].Wins {
			return records[i].Wins > records[j].Wins
		}
		return records[i].TeamName < records[j].TeamName
	})

	return records, nil
}

// LeagueWinMean is the average number of wins per team. ok is false when
// there are no records.
func LeagueWinMean(records []WinLoss) (mean float64, ok bool) {
	if len(records) == 0 {
		return 0, false
	}
	var total int
	for _, r := range records {
		total += r.Wins
	}
	return round2(float64(total) / float64(len(records))), true
}

// ShootingSplits returns field goal, three point and free throw percentages
// per team, best field goal percentage first
func (e *AggregationEngine) ShootingSplits(ctx context.Context) ([]ShootingSplit, error) {
	totals, err := e.aggregates.GetShootingTotals(ctx)
	if err != nil {
		return nil, storeError("shooting splits", err)
	}

	splits := make([]ShootingSplit, 0, len(totals))
	for _, t := range totals {
		splits = append(splits, ShootingSplit{
			TeamID:   t.TeamID,
			TeamName: t.TeamName,
			FGPct:    percentage(t.FGM, t.FGA),
			TPPct:    percentage(t.TPM, t.TPA),
			FTPct:    percentage(t.FTM, t.FTA),
		})
	}
	sort.SliceStable(splits, func(i, j int) bool {
		a, b := splits[i].FGPct, splits[j].FGPct
		switch {
		case a == nil && b == nil:
			return splits[i].TeamName < splits[j].TeamName
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a > *b
		}
		return splits[i].TeamName < splits[j].TeamName
	})

	return splits, nil
}

// Teams lists every team by name
func (e *AggregationEngine) Teams(ctx context.Context) ([]*store.Team, error) {
	teams, err := e.teams.GetAll(ctx)
	if err != nil {
		return nil, storeError("teams", err)
	}
	return teams, nil
}

func buildSeries(stat string, averages []*repository.TeamAverages, pick func(*repository.TeamAverages) float64) PerGameSeries {
	series := PerGameSeries{Stat: stat, Teams: make([]TeamValue, 0, len(averages))}
	if len(averages) == 0 {
		return series
	}

	var sum float64
	for _, a := range averages {
		v := round2(pick(a))
		sum += v
		series.Teams = append(series.Teams, TeamValue{TeamID: a.TeamID, TeamName: a.TeamName, Value: v})
	}
	series.Mean = round2(sum / float64(len(series.Teams)))

	for i := range series.Teams {
		series.Teams[i].AboveMean = series.Teams[i].Value >= series.Mean
	}
	sort.SliceStable(series.Teams, func(i, j int) bool {
		if series.Teams[i].Value != series.Teams[j].Value {
			return series.Teams[i].Value > series.Teams[j].Value
		}
		return series.Teams[i].TeamName < series.Teams[j].TeamName
	})

	return series
}

func percentage(made, attempted int64) *float64 {
	if attempted == 0 {
		return nil
	}
	v := math.Round(float64(made)/float64(attempted)*10000) / 10000
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
