package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fortuna/courtside/internal/service"
	"github.com/fortuna/courtside/internal/store/storetest"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSelectionState(t *testing.T) {
	tests := []struct {
		state    service.SelectionState
		name     string
		terminal bool
	}{
		{service.NoSelection, "no_selection", false},
		{service.TeamsChosen, "teams_chosen", false},
		{service.MatchesListed, "matches_listed", false},
		{service.ZeroSelected, "zero_selected", true},
		{service.OneSelected, "one_selected", true},
		{service.MultipleSelected, "multiple_selected", true},
		{service.SelectionState(42), "selection_state(42)", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.state.Terminal(); got != tt.terminal {
				t.Errorf("Terminal() = %v, want %v", got, tt.terminal)
			}
		})
	}

	b, err := json.Marshal(map[string]service.SelectionState{"state": service.MatchesListed})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"state":"matches_listed"}` {
		t.Errorf("json = %s", b)
	}
}

func TestSelection(t *testing.T) {
	Convey("Given a fresh selection", t, func() {
		ctx := context.Background()
		sel := service.NewSelection(seasonResolver(t))
		So(sel.State(), ShouldEqual, service.NoSelection)

		Convey("When matches are listed before teams are chosen", func() {
			_, err := sel.ListMatches(ctx)

			Convey("Then the step is rejected", func() {
				So(errors.Is(err, service.ErrInvalidArgument), ShouldBeTrue)
				So(sel.State(), ShouldEqual, service.NoSelection)
			})
		})

		Convey("When matches are selected before they are listed", func() {
			So(sel.ChooseTeams("BOS", "PHI"), ShouldBeNil)
			_, err := sel.SelectMatches(ctx, []string{storetest.MatchPHIatBOS})

			Convey("Then the step is rejected", func() {
				So(errors.Is(err, service.ErrInvalidArgument), ShouldBeTrue)
				So(sel.State(), ShouldEqual, service.TeamsChosen)
			})
		})

		Convey("When walking through the whole flow", func() {
			So(sel.ChooseTeams("BOS", "PHI"), ShouldBeNil)
			So(sel.State(), ShouldEqual, service.TeamsChosen)

			m, err := sel.ListMatches(ctx)
			So(err, ShouldBeNil)
			So(sel.State(), ShouldEqual, service.MatchesListed)
			So(sel.Matchup(), ShouldEqual, m)

			Convey("Then selecting nothing ends in ZeroSelected", func() {
				result, err := sel.SelectMatches(ctx, nil)
				So(err, ShouldBeNil)
				So(result.State, ShouldEqual, service.ZeroSelected)
				So(sel.State(), ShouldEqual, service.ZeroSelected)
			})

			Convey("Then selecting both matches ends in MultipleSelected", func() {
				_, err := sel.SelectMatches(ctx, m.MatchIDs)
				So(err, ShouldBeNil)
				So(sel.State(), ShouldEqual, service.MultipleSelected)
			})

			Convey("Then a selection can be narrowed down to one match", func() {
				_, err := sel.SelectMatches(ctx, m.MatchIDs)
				So(err, ShouldBeNil)

				result, err := sel.SelectMatches(ctx, m.MatchIDs[:1])
				So(err, ShouldBeNil)
				So(sel.State(), ShouldEqual, service.OneSelected)
				So(sel.Result(), ShouldEqual, result)
			})

			Convey("Then a failed selection keeps the previous state", func() {
				_, err := sel.SelectMatches(ctx, []string{"209901010BOS"})
				So(errors.Is(err, service.ErrAmbiguousMatchSelection), ShouldBeTrue)
				So(sel.State(), ShouldEqual, service.MatchesListed)
			})

			Convey("Then reset starts over", func() {
				sel.Reset()
				So(sel.State(), ShouldEqual, service.NoSelection)
				So(sel.Matchup(), ShouldBeNil)
				So(sel.Result(), ShouldBeNil)
			})
		})

		Convey("When a team is missing", func() {
			err := sel.ChooseTeams("BOS", "")

			Convey("Then the teams are rejected", func() {
				So(errors.Is(err, service.ErrInvalidArgument), ShouldBeTrue)
			})
		})
	})
}
