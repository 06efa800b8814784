package service

import "github.com/fortuna/courtside/internal/store"

// StatComparison puts one statistic of both sides next to each other. Total is
// the sum of both sides, the scale a side-by-side bar is drawn against.
type StatComparison struct {
	Stat  string `json:"stat"`
	Label string `json:"label"`
	Home  int    `json:"home"`
	Away  int    `json:"away"`
	Total int    `json:"total"`
}

type comparedStat struct {
	stat  string
	label string
	pick  func(*store.MatchupRow) int
}

var comparedStats = []comparedStat{
	{"pts", "Points", func(r *store.MatchupRow) int { return r.Points }},
	{"fgm", "Field Goals Made", func(r *store.MatchupRow) int { return r.FieldGoalsMade }},
	{"fga", "Field Goals Attempted", func(r *store.MatchupRow) int { return r.FieldGoalsAttempted }},
	{"tpm", "Three Pointers Made", func(r *store.MatchupRow) int { return r.ThreePointersMade }},
	{"tpa", "Three Pointers Attempted", func(r *store.MatchupRow) int { return r.ThreePointersAttempted }},
	{"ftm", "Free Throws Made", func(r *store.MatchupRow) int { return r.FreeThrowsMade }},
	{"fta", "Free Throws Attempted", func(r *store.MatchupRow) int { return r.FreeThrowsAttempted }},
	{"oreb", "Offensive Rebounds", func(r *store.MatchupRow) int { return r.OffensiveRebounds }},
	{"dreb", "Defensive Rebounds", func(r *store.MatchupRow) int { return r.DefensiveRebounds }},
	{"reb", "Rebounds", func(r *store.MatchupRow) int { return r.Rebounds }},
	{"ast", "Assists", func(r *store.MatchupRow) int { return r.Assists }},
	{"tov", "Turnovers", func(r *store.MatchupRow) int { return r.Turnovers }},
	{"stl", "Steals", func(r *store.MatchupRow) int { return r.Steals }},
	{"blk", "Blocks", func(r *store.MatchupRow) int { return r.Blocks }},
	{"pf", "Personal Fouls", func(r *store.MatchupRow) int { return r.PersonalFouls }},
}

// Compare lists every box-score statistic of a resolved pair, home first
func Compare(pair *MatchupPair) []StatComparison {
	if pair == nil || pair.Home == nil || pair.Away == nil {
		return nil
	}

	out := make([]StatComparison, 0, len(comparedStats))
	for _, s := range comparedStats {
		home, away := s.pick(pair.Home), s.pick(pair.Away)
		out = append(out, StatComparison{
			Stat:  s.stat,
			Label: s.label,
			Home:  home,
			Away:  away,
			Total: home + away,
		})
	}
	return out
}
