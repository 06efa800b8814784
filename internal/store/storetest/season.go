package storetest

import (
	"testing"

	"github.com/fortuna/courtside/internal/store"
)

// Match ids of the Season fixture. The home team's id is embedded in each.
const (
	MatchPHIatBOS = "202210180BOS"
	MatchLALatGSW = "202210180GSW"
	MatchBOSatPHI = "202211120PHI" // overtime
	MatchBOSatLAL = "202212130LAL"
)

// SeasonTeams are the teams of the Season fixture, by id
var SeasonTeams = map[string]string{
	"BOS": "Boston Celtics",
	"PHI": "Philadelphia 76ers",
	"LAL": "Los Angeles Lakers",
	"GSW": "Golden State Warriors",
}

// SeasonSides are the eight sides of the Season fixture's four matches
var SeasonSides = []Side{
	{MatchID: MatchPHIatBOS, TeamID: "BOS", DateID: 1, Points: 126, Minutes: 240, Result: "W", IsHome: Bool(true),
		Box: box(45, 88, 18, 40, 18, 22, 10, 36, 24, 12, 8, 5, 18)},
	{MatchID: MatchPHIatBOS, TeamID: "PHI", DateID: 1, Points: 117, Minutes: 240, Result: "L", IsHome: Bool(false),
		Box: box(43, 90, 13, 34, 18, 21, 9, 30, 22, 14, 7, 3, 20)},
	{MatchID: MatchLALatGSW, TeamID: "GSW", DateID: 1, Points: 123, Minutes: 240, Result: "W", IsHome: Bool(true),
		Box: box(45, 94, 21, 40, 12, 15, 12, 38, 31, 16, 9, 6, 21)},
	{MatchID: MatchLALatGSW, TeamID: "LAL", DateID: 1, Points: 109, Minutes: 240, Result: "L", IsHome: Bool(false),
		Box: box(40, 94, 10, 40, 19, 25, 13, 34, 23, 14, 10, 5, 19)},
	{MatchID: MatchBOSatPHI, TeamID: "PHI", DateID: 2, Points: 110, Minutes: 265, Result: "W", IsHome: Bool(true),
		Box: box(40, 85, 12, 33, 18, 24, 8, 40, 25, 11, 6, 7, 22)},
	{MatchID: MatchBOSatPHI, TeamID: "BOS", DateID: 2, Points: 106, Minutes: 265, Result: "L", IsHome: Bool(false),
		Box: box(38, 92, 14, 45, 16, 20, 11, 35, 20, 13, 9, 4, 23)},
	{MatchID: MatchBOSatLAL, TeamID: "BOS", DateID: 3, Points: 122, Minutes: 240, Result: "W", IsHome: Bool(false),
		Box: box(44, 87, 16, 38, 18, 21, 9, 37, 27, 10, 7, 6, 17)},
	{MatchID: MatchBOSatLAL, TeamID: "LAL", DateID: 3, Points: 118, Minutes: 240, Result: "L", IsHome: Bool(true),
		Box: box(42, 89, 11, 31, 23, 29, 12, 33, 24, 15, 8, 4, 20)},
}

// SeasonDates are the game dates of the Season fixture
var SeasonDates = map[int]string{
	1: "2022-10-18",
	2: "2022-11-12",
	3: "2022-12-13",
}

// Season loads a small four-team season: four matches over three dates, one
// of them in overtime
func Season(t testing.TB, db *store.Database) {
	t.Helper()
	for id, name := range SeasonTeams {
		InsertTeam(t, db, id, name)
	}
	for id, date := range SeasonDates {
		InsertGameDate(t, db, id, date)
	}
	for _, s := range SeasonSides {
		InsertSide(t, db, s)
	}
}

func box(fgm, fga, tpm, tpa, ftm, fta, oreb, dreb, ast, tov, stl, blk, pf int) store.MatchStats {
	return store.MatchStats{
		FieldGoalsMade:         fgm,
		FieldGoalsAttempted:    fga,
		ThreePointersMade:      tpm,
		ThreePointersAttempted: tpa,
		FreeThrowsMade:         ftm,
		FreeThrowsAttempted:    fta,
		OffensiveRebounds:      oreb,
		DefensiveRebounds:      dreb,
		Assists:                ast,
		Turnovers:              tov,
		Steals:                 stl,
		Blocks:                 blk,
		PersonalFouls:          pf,
	}
}
