package service

import (
	"context"
	"fmt"
)

// SelectionState is a step of the interactive matchup selection flow:
//
//	NoSelection -> TeamsChosen -> MatchesListed -> {ZeroSelected | OneSelected | MultipleSelected}
type SelectionState int

const (
	NoSelection SelectionState = iota
	TeamsChosen
	MatchesListed
	ZeroSelected
	OneSelected
	MultipleSelected
)

var selectionStateNames = map[SelectionState]string{
	NoSelection:      "no_selection",
	TeamsChosen:      "teams_chosen",
	MatchesListed:    "matches_listed",
	ZeroSelected:     "zero_selected",
	OneSelected:      "one_selected",
	MultipleSelected: "multiple_selected",
}

func (s SelectionState) String() string {
	if name, ok := selectionStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("selection_state(%d)", int(s))
}

// MarshalText encodes the state by name
func (s SelectionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether the state is one of the selection outcomes
func (s SelectionState) Terminal() bool {
	return s == ZeroSelected || s == OneSelected || s == MultipleSelected
}

// Selection tracks one viewer's progress through the selection flow. It is
// not safe for concurrent use.
type Selection struct {
	resolver *MatchupResolver
	state    SelectionState
	teamA    string
	teamB    string
	matchup  *Matchup
	result   *SelectionResult
}

// NewSelection starts a selection in NoSelection
func NewSelection(resolver *MatchupResolver) *Selection {
	return &Selection{resolver: resolver, state: NoSelection}
}

// State returns the current state
func (s *Selection) State() SelectionState { return s.state }

// Matchup returns the listed matches, or nil before MatchesListed
func (s *Selection) Matchup() *Matchup { return s.matchup }

// Result returns the last selection outcome, or nil before one is reached
func (s *Selection) Result() *SelectionResult { return s.result }

// ChooseTeams records the two teams and moves to TeamsChosen. Choosing teams
// again from any state starts over.
func (s *Selection) ChooseTeams(teamA, teamB string) error {
	if teamA == "" || teamB == "" {
		return errorf("choose teams", ErrInvalidArgument, "both team ids are required")
	}
	s.teamA, s.teamB = teamA, teamB
	s.matchup = nil
	s.result = nil
	s.state = TeamsChosen
	return nil
}

// ListMatches loads the qualifying matches for the chosen teams and moves to
// MatchesListed. On failure the selection stays in TeamsChosen.
func (s *Selection) ListMatches(ctx context.Context) (*Matchup, error) {
	if s.state == NoSelection {
		return nil, errorf("list matches", ErrInvalidArgument, "no teams chosen")
	}

	m, err := s.resolver.QualifyingMatches(ctx, s.teamA, s.teamB)
	if err != nil {
		s.state = TeamsChosen
		return nil, err
	}
	s.matchup = m
	s.result = nil
	s.state = MatchesListed
	return m, nil
}

// SelectMatches applies a match selection once matches are listed. The
// outcome state is ZeroSelected, OneSelected or MultipleSelected; selecting
// again replaces the previous outcome.
func (s *Selection) SelectMatches(ctx context.Context, matchIDs []string) (*SelectionResult, error) {
	if s.state != MatchesListed && !s.state.Terminal() {
		return nil, errorf("select matches", ErrInvalidArgument, "matches not listed (state %s)", s.state)
	}

	result, err := s.resolver.ResolveSelection(ctx, s.matchup, matchIDs)
	if err != nil {
		return nil, err
	}
	s.result = result
	s.state = result.State
	return result, nil
}

// Reset returns to NoSelection
func (s *Selection) Reset() {
	*s = Selection{resolver: s.resolver, state: NoSelection}
}
