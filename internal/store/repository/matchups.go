package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fortuna/courtside/internal/store"
)

// MatchupRepository reads the rows behind head-to-head comparisons
type MatchupRepository struct {
	db *store.Database
}

// NewMatchupRepository creates a new matchup repository
func NewMatchupRepository(db *store.Database) *MatchupRepository {
	return &MatchupRepository{db: db}
}

// GetTeamPairRows returns every box-score row of either team, each joined with
// that same team's game-log row. The result spans both teams' whole season;
// narrowing it to common matches is up to the caller.
func (r *MatchupRepository) GetTeamPairRows(ctx context.Context, teamA, teamB string) ([]*store.MatchupRow, error) {
	homeColumn := ""
	if r.db.Schema().HasHomeFlag {
		homeColumn = ", mi.is_home"
	}

	query := `
		SELECT ms.match_id, ms.team_id, ti.team_name,
			ms.fgm, ms.fga, ms.tpm, ms.tpa, ms.ftm, ms.fta,
			ms.oreb, ms.dreb, ms.reb, ms.ast, ms.tov, ms.stl, ms.blk, ms.pf,
			mi.pts, mi.date_id` + homeColumn + `
		FROM match_stats ms
		JOIN match_info mi ON ms.match_id = mi.match_id
		JOIN team_info ti ON ms.team_id = ti.team_id
		WHERE (ms.team_id = ? AND mi.team_id = ?) OR (ms.team_id = ? AND mi.team_id = ?)
		ORDER BY mi.date_id, ms.match_id, ms.team_id
	`

	rows, err := r.db.QueryContext(ctx, "team_pair_rows", query, teamA, teamA, teamB, teamB)
	if err != nil {
		return nil, fmt.Errorf("querying matchup rows: %w", err)
	}
	defer rows.Close()

	result := make([]*store.MatchupRow, 0)
	for rows.Next() {
		row := &store.MatchupRow{}
		dest := []interface{}{
			&row.MatchID, &row.TeamID, &row.TeamName,
			&row.FieldGoalsMade, &row.FieldGoalsAttempted,
			&row.ThreePointersMade, &row.ThreePointersAttempted,
			&row.FreeThrowsMade, &row.FreeThrowsAttempted,
			&row.OffensiveRebounds, &row.DefensiveRebounds, &row.Rebounds,
			&row.Assists, &row.Turnovers, &row.Steals, &row.Blocks, &row.PersonalFouls,
			&row.Points, &row.DateID,
		}
		var isHome sql.NullBool
		if homeColumn != "" {
			dest = append(dest, &isHome)
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning matchup row: %w", err)
		}
		if isHome.Valid {
			v := isHome.Bool
			row.IsHome = &v
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// GetGameDate looks up the calendar date for a date_id
func (r *MatchupRepository) GetGameDate(ctx context.Context, dateID int) (*store.GameDate, error) {
	query := `
		SELECT date_id, game_date
		FROM game_dates
		WHERE date_id = ?
	`

	var gameDate sql.NullString
	gd := &store.GameDate{}
	err := r.db.QueryRowContext(ctx, "game_date", query, dateID).Scan(&gd.DateID, &gameDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("game date %d: %w", dateID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying game date: %w", err)
	}
	gd.GameDate = gameDate.String

	return gd, nil
}
