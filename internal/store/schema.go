package store

import (
	"context"
	"fmt"
	"strings"
)

// SchemaInfo describes optional features detected in the store
type SchemaInfo struct {
	Verified bool `json:"verified"`
	// HasHomeFlag reports whether match_info carries an explicit is_home column
	HasHomeFlag bool `json:"has_home_flag"`
}

type relation struct {
	table   string
	columns []string
}

// requiredRelations lists every relation and column the queries read
var requiredRelations = []relation{
	{table: "team_info", columns: []string{"team_id", "team_name"}},
	{table: "match_info", columns: []string{"match_id", "team_id", "pts", "min", "result", "date_id"}},
	{table: "match_stats", columns: []string{
		"match_id", "team_id", "fgm", "fga", "tpm", "tpa", "ftm", "fta",
		"oreb", "dreb", "reb", "ast", "tov", "stl", "blk", "pf",
	}},
	{table: "game_dates", columns: []string{"date_id", "game_date"}},
}

// VerifySchema checks that every required relation and column exists. It only
// issues zero-row SELECTs, so it is safe against a read-only store.
func (db *Database) VerifySchema(ctx context.Context) (SchemaInfo, error) {
	for _, rel := range requiredRelations {
		query := fmt.Sprintf("SELECT %s FROM %s LIMIT 0", strings.Join(rel.columns, ", "), rel.table)
		rows, err := db.QueryContext(ctx, "verify_"+rel.table, query)
		if err != nil {
			return SchemaInfo{}, fmt.Errorf("verifying relation %s: %w", rel.table, err)
		}
		rows.Close()
	}

	info := SchemaInfo{Verified: true}
	rows, err := db.QueryContext(ctx, "verify_is_home", "SELECT is_home FROM match_info LIMIT 0")
	if err == nil {
		rows.Close()
		info.HasHomeFlag = true
	}

	db.schema = info
	return info, nil
}
