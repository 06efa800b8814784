package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fortuna/courtside/internal/store/repository"
	"github.com/fortuna/courtside/internal/store/storetest"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTeamRepository(t *testing.T) {
	Convey("Given the season fixture", t, func() {
		ctx := context.Background()
		db := storetest.Open(t)
		storetest.Season(t, db)
		repo := repository.NewTeamRepository(db)

		Convey("When listing teams", func() {
			teams, err := repo.GetAll(ctx)

			Convey("Then they are ordered by name", func() {
				So(err, ShouldBeNil)
				So(teams, ShouldHaveLength, 4)
				So(teams[0].TeamName, ShouldEqual, "Boston Celtics")
				So(teams[3].TeamName, ShouldEqual, "Philadelphia 76ers")
			})
		})

		Convey("When looking up an unknown team", func() {
			_, err := repo.GetByID(ctx, "NYK")

			Convey("Then it is not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When looking up a known team", func() {
			team, err := repo.GetByID(ctx, "GSW")

			Convey("Then its name is returned", func() {
				So(err, ShouldBeNil)
				So(team.TeamName, ShouldEqual, "Golden State Warriors")
			})
		})
	})
}

func TestAggregateRepository(t *testing.T) {
	Convey("Given the season fixture", t, func() {
		ctx := context.Background()
		db := storetest.Open(t)
		storetest.Season(t, db)
		repo := repository.NewAggregateRepository(db)

		Convey("When computing season totals", func() {
			totals, err := repo.GetSeasonTotals(ctx)

			Convey("Then minutes count each match once", func() {
				So(err, ShouldBeNil)
				So(totals.Matches, ShouldEqual, int64(4))
				So(totals.Dates, ShouldEqual, int64(3))
				So(totals.Minutes, ShouldEqual, int64(240+240+265+240))
				So(totals.Points, ShouldEqual, int64(931))
				So(totals.FGM, ShouldEqual, int64(337))
			})
		})

		Convey("When counting fact rows", func() {
			c, err := repo.GetCardinality(ctx)

			Convey("Then both sides pair 1:1", func() {
				So(err, ShouldBeNil)
				So(c.MatchInfoRows, ShouldEqual, 8)
				So(c.MatchStatsRows, ShouldEqual, 8)
				So(c.FactRows, ShouldEqual, 8)
				So(c.Consistent(), ShouldBeTrue)
			})
		})

		Convey("When averaging per team", func() {
			averages, err := repo.GetTeamAverages(ctx)

			Convey("Then every team has its games and means", func() {
				So(err, ShouldBeNil)
				So(averages, ShouldHaveLength, 4)
				byID := map[string]*repository.TeamAverages{}
				for _, a := range averages {
					byID[a.TeamID] = a
				}
				So(byID["BOS"].Games, ShouldEqual, 3)
				So(byID["BOS"].Points, ShouldAlmostEqual, 118.0, 0.0001)
				So(byID["PHI"].Points, ShouldAlmostEqual, 113.5, 0.0001)
				So(byID["GSW"].Games, ShouldEqual, 1)
			})
		})

		Convey("When counting wins and losses", func() {
			records, err := repo.GetWinsLosses(ctx)

			Convey("Then the most wins come first", func() {
				So(err, ShouldBeNil)
				So(records[0].TeamID, ShouldEqual, "BOS")
				So(records[0].Wins, ShouldEqual, 2)
				So(records[0].Losses, ShouldEqual, 1)
				So(records[3].TeamID, ShouldEqual, "LAL")
				So(records[3].Wins, ShouldEqual, 0)
			})
		})

		Convey("When summing shooting", func() {
			totals, err := repo.GetShootingTotals(ctx)

			Convey("Then made and attempted shots add up per team", func() {
				So(err, ShouldBeNil)
				So(totals[0].TeamID, ShouldEqual, "BOS")
				So(totals[0].FGM, ShouldEqual, int64(127))
				So(totals[0].FGA, ShouldEqual, int64(267))
			})
		})
	})

	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		repo := repository.NewAggregateRepository(storetest.Open(t))

		Convey("When computing league averages", func() {
			avg, err := repo.GetLeagueAverages(ctx)

			Convey("Then there are no rows and no averages", func() {
				So(err, ShouldBeNil)
				So(avg.Rows, ShouldEqual, 0)
				So(avg.Points.Valid, ShouldBeFalse)
			})
		})

		Convey("When computing season totals", func() {
			totals, err := repo.GetSeasonTotals(ctx)

			Convey("Then every counter is zero", func() {
				So(err, ShouldBeNil)
				So(*totals, ShouldResemble, repository.SeasonTotals{})
			})
		})
	})
}

func TestMatchupRepository(t *testing.T) {
	Convey("Given the season fixture", t, func() {
		ctx := context.Background()
		db := storetest.Open(t)
		storetest.Season(t, db)
		repo := repository.NewMatchupRepository(db)

		Convey("When fetching rows for Boston and Philadelphia", func() {
			rows, err := repo.GetTeamPairRows(ctx, "BOS", "PHI")

			Convey("Then every side of either team is returned with its own points", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 5)
				for _, r := range rows {
					So([]string{"BOS", "PHI"}, ShouldContain, r.TeamID)
					So(r.IsHome, ShouldBeNil)
				}
				So(rows[0].MatchID, ShouldEqual, storetest.MatchPHIatBOS)
				So(rows[0].TeamID, ShouldEqual, "BOS")
				So(rows[0].Points, ShouldEqual, 126)
				So(rows[0].Rebounds, ShouldEqual, 46)
			})
		})

		Convey("When looking up a game date", func() {
			gd, err := repo.GetGameDate(ctx, 2)

			Convey("Then the calendar date is returned", func() {
				So(err, ShouldBeNil)
				So(gd.GameDate, ShouldEqual, "2022-11-12")
			})
		})

		Convey("When looking up an unknown game date", func() {
			_, err := repo.GetGameDate(ctx, 99)

			Convey("Then it is not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})

	Convey("Given a store with an is_home column", t, func() {
		ctx := context.Background()
		db := storetest.Open(t, storetest.WithHomeFlag())
		storetest.Season(t, db)
		repo := repository.NewMatchupRepository(db)

		Convey("When fetching rows", func() {
			rows, err := repo.GetTeamPairRows(ctx, "BOS", "LAL")

			Convey("Then the flag is carried on each row", func() {
				So(err, ShouldBeNil)
				for _, r := range rows {
					So(r.IsHome, ShouldNotBeNil)
					if r.MatchID == storetest.MatchBOSatLAL {
						So(*r.IsHome, ShouldEqual, r.TeamID == "LAL")
					}
				}
			})
		})
	})
}
