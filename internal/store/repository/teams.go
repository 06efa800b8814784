package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fortuna/courtside/internal/store"
)

// ErrNotFound is returned when a lookup by key matches no row
var ErrNotFound = errors.New("not found")

// TeamRepository handles team data access
type TeamRepository struct {
	db *store.Database
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *store.Database) *TeamRepository {
	return &TeamRepository{db: db}
}

// GetAll returns every team ordered by name
func (r *TeamRepository) GetAll(ctx context.Context) ([]*store.Team, error) {
	query := `
		SELECT team_id, team_name
		FROM team_info
		ORDER BY team_name
	`

	rows, err := r.db.QueryContext(ctx, "teams_all", query)
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*store.Team, 0)
	for rows.Next() {
		team := &store.Team{}
		if err := rows.Scan(&team.TeamID, &team.TeamName); err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// GetByID finds a team by ID
func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (*store.Team, error) {
	query := `
		SELECT team_id, team_name
		FROM team_info
		WHERE team_id = ?
	`

	team := &store.Team{}
	err := r.db.QueryRowContext(ctx, "team_by_id", query, teamID).Scan(&team.TeamID, &team.TeamName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying team: %w", err)
	}

	return team, nil
}
