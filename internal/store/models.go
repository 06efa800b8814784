package store

// Team is a row of team_info
type Team struct {
	TeamID   string `json:"team_id" db:"team_id"`
	TeamName string `json:"team_name" db:"team_name"`
}

// MatchInfo is one team's game-log row for a match
type MatchInfo struct {
	MatchID string `json:"match_id" db:"match_id"`
	TeamID  string `json:"team_id" db:"team_id"`
	Points  int    `json:"pts" db:"pts"`
	Minutes int    `json:"min" db:"min"`
	Result  string `json:"result" db:"result"` // "W" or "L"
	DateID  int    `json:"date_id" db:"date_id"`
}

// MatchStats is one team's box score for a match
type MatchStats struct {
	MatchID                string `json:"match_id" db:"match_id"`
	TeamID                 string `json:"team_id" db:"team_id"`
	FieldGoalsMade         int    `json:"fgm" db:"fgm"`
	FieldGoalsAttempted    int    `json:"fga" db:"fga"`
	ThreePointersMade      int    `json:"tpm" db:"tpm"`
	ThreePointersAttempted int    `json:"tpa" db:"tpa"`
	FreeThrowsMade         int    `json:"ftm" db:"ftm"`
	FreeThrowsAttempted    int    `json:"fta" db:"fta"`
	OffensiveRebounds      int    `json:"oreb" db:"oreb"`
	DefensiveRebounds      int    `json:"dreb" db:"dreb"`
	Rebounds               int    `json:"reb" db:"reb"`
	Assists                int    `json:"ast" db:"ast"`
	Turnovers              int    `json:"tov" db:"tov"`
	Steals                 int    `json:"stl" db:"stl"`
	Blocks                 int    `json:"blk" db:"blk"`
	PersonalFouls          int    `json:"pf" db:"pf"`
}

// GameDate maps a date_id to its calendar date
type GameDate struct {
	DateID   int    `json:"date_id" db:"date_id"`
	GameDate string `json:"game_date" db:"game_date"`
}

// MatchupRow is one team's side of a match: the box score joined with the
// team name and the game-log points
type MatchupRow struct {
	MatchStats
	TeamName string `json:"team_name" db:"team_name"`
	Points   int    `json:"pts" db:"pts"`
	DateID   int    `json:"date_id" db:"date_id"`

	// IsHome is only set when match_info carries an explicit is_home column
	IsHome *bool `json:"is_home,omitempty" db:"is_home"`
}
