package service

import (
	"context"
	"errors"
	"strings"

	"github.com/fortuna/courtside/internal/store"
	"github.com/fortuna/courtside/internal/store/repository"
)

// Advisory messages for selections that do not resolve to one match
const (
	MessageZeroSelected     = "No match id(s) have been selected. Select a specific game in order to take part of match analysis."
	MessageMultipleSelected = "Multiple id(s) will not show you match analysis. Filter down to a singular match."
)

// MatchupResolver finds head-to-head matches between two teams and resolves
// each into a home/away pair
type MatchupResolver struct {
	teams    *repository.TeamRepository
	matchups *repository.MatchupRepository
}

// NewMatchupResolver creates a new matchup resolver
func NewMatchupResolver(db *store.Database) *MatchupResolver {
	return &MatchupResolver{
		teams:    repository.NewTeamRepository(db),
		matchups: repository.NewMatchupRepository(db),
	}
}

// Matchup is the set of matches two teams played against each other
type Matchup struct {
	TeamA    string              `json:"team_a"`
	TeamB    string              `json:"team_b"`
	Rows     []*store.MatchupRow `json:"rows"`
	MatchIDs []string            `json:"match_ids"`
}

// MatchupPair is one match split into its home and away rows
type MatchupPair struct {
	MatchID string            `json:"match_id"`
	Home    *store.MatchupRow `json:"home"`
	Away    *store.MatchupRow `json:"away"`
}

// QualifyingMatches returns the rows and ids of every match both teams played
// in. A team paired with itself has no qualifying matches. A team id missing
// from team_info is ErrNoData; known teams that never met give an empty matchup.
func (r *MatchupResolver) QualifyingMatches(ctx context.Context, teamA, teamB string) (*Matchup, error) {
	const op = "qualifying matches"

	teamA, teamB = strings.TrimSpace(teamA), strings.TrimSpace(teamB)
	if teamA == "" || teamB == "" {
		return nil, errorf(op, ErrInvalidArgument, "both team ids are required")
	}

	m := &Matchup{
		TeamA:    teamA,
		TeamB:    teamB,
		Rows:     make([]*store.MatchupRow, 0),
		MatchIDs: make([]string, 0),
	}
	if teamA == teamB {
		return m, nil
	}

	for _, id := range []string{teamA, teamB} {
		if _, err := r.teams.GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, errorf(op, ErrNoData, "unknown team %s", id)
			}
			return nil, storeError(op, err)
		}
	}

	rows, err := r.matchups.GetTeamPairRows(ctx, teamA, teamB)
	if err != nil {
		return nil, storeError(op, err)
	}

	m.Rows, m.MatchIDs = FilterQualifying(rows)
	return m, nil
}

// FilterQualifying keeps the rows whose match_id group holds exactly two
// distinct team ids, and lists those match ids in order of first appearance
func FilterQualifying(rows []*store.MatchupRow) ([]*store.MatchupRow, []string) {
	teamsByMatch := make(map[string]map[string]struct{})
	order := make([]string, 0)
	for _, row := range rows {
		teams, ok := teamsByMatch[row.MatchID]
		if !ok {
			teams = make(map[string]struct{}, 2)
			teamsByMatch[row.MatchID] = teams
			order = append(order, row.MatchID)
		}
		teams[row.TeamID] = struct{}{}
	}

	kept := make([]*store.MatchupRow, 0, len(rows))
	for _, row := range rows {
		if len(teamsByMatch[row.MatchID]) == 2 {
			kept = append(kept, row)
		}
	}

	ids := make([]string, 0, len(order))
	for _, id := range order {
		if len(teamsByMatch[id]) == 2 {
			ids = append(ids, id)
		}
	}

	return kept, ids
}

// ResolvePair picks the two rows of matchID and tags them home and away
func ResolvePair(rows []*store.MatchupRow, matchID string) (*MatchupPair, error) {
	const op = "resolve pair"

	if strings.TrimSpace(matchID) == "" {
		return nil, errorf(op, ErrInvalidArgument, "match id is required")
	}

	selected := make([]*store.MatchupRow, 0, 2)
	for _, row := range rows {
		if row.MatchID == matchID {
			selected = append(selected, row)
		}
	}
	switch len(selected) {
	case 2:
	case 0:
		return nil, errorf(op, ErrAmbiguousMatchSelection, "match %s not found in matchup", matchID)
	default:
		return nil, errorf(op, ErrAmbiguousMatchSelection, "match %s has %d rows, want 2", matchID, len(selected))
	}

	home, away, err := DetermineHome(selected[0], selected[1])
	if err != nil {
		return nil, err
	}

	return &MatchupPair{MatchID: matchID, Home: home, Away: away}, nil
}

// DetermineHome decides which of a match's two rows is the home side. An
// explicit is_home flag wins when both rows carry it. Otherwise a row is home
// when its team id appears inside its match id, which is how the store encodes
// the home team. Exactly one row must qualify.
func DetermineHome(a, b *store.MatchupRow) (home, away *store.MatchupRow, err error) {
	const op = "determine home"

	if a.MatchID != b.MatchID {
		return nil, nil, errorf(op, ErrInvalidArgument, "rows belong to different matches %s and %s", a.MatchID, b.MatchID)
	}
	if a.TeamID == b.TeamID {
		return nil, nil, errorf(op, ErrUnresolvableSide, "both rows of match %s are team %s", a.MatchID, a.TeamID)
	}

	var aHome, bHome bool
	if a.IsHome != nil && b.IsHome != nil {
		aHome, bHome = *a.IsHome, *b.IsHome
	} else {
		aHome, bHome = containsTeamID(a), containsTeamID(b)
	}

	switch {
	case aHome && !bHome:
		return a, b, nil
	case bHome && !aHome:
		return b, a, nil
	case aHome && bHome:
		return nil, nil, errorf(op, ErrUnresolvableSide, "both %s and %s qualify as home in match %s", a.TeamID, b.TeamID, a.MatchID)
	default:
		return nil, nil, errorf(op, ErrUnresolvableSide, "neither %s nor %s qualifies as home in match %s", a.TeamID, b.TeamID, a.MatchID)
	}
}

func containsTeamID(row *store.MatchupRow) bool {
	return row.TeamID != "" && strings.Contains(row.MatchID, row.TeamID)
}

// SelectionResult is the outcome of selecting matches from a matchup
type SelectionResult struct {
	State      SelectionState   `json:"state"`
	Message    string           `json:"message,omitempty"`
	Pair       *MatchupPair     `json:"pair,omitempty"`
	GameDate   string           `json:"game_date,omitempty"`
	Comparison []StatComparison `json:"comparison,omitempty"`
}

// ResolveSelection applies a user's match selection to a matchup. Zero or
// several ids are advisory outcomes; exactly one id is resolved into a pair
// with its game date and stat comparison.
func (r *MatchupResolver) ResolveSelection(ctx context.Context, m *Matchup, matchIDs []string) (*SelectionResult, error) {
	const op = "resolve selection"

	ids := dedupe(matchIDs)
	switch len(ids) {
	case 0:
		return &SelectionResult{State: ZeroSelected, Message: MessageZeroSelected}, nil
	case 1:
	default:
		return &SelectionResult{State: MultipleSelected, Message: MessageMultipleSelected}, nil
	}

	var rows []*store.MatchupRow
	if m != nil {
		rows = m.Rows
	}
	pair, err := ResolvePair(rows, ids[0])
	if err != nil {
		return nil, err
	}

	result := &SelectionResult{
		State:      OneSelected,
		Pair:       pair,
		Comparison: Compare(pair),
	}

	gd, err := r.matchups.GetGameDate(ctx, pair.Home.DateID)
	switch {
	case err == nil:
		result.GameDate = gd.GameDate
	case errors.Is(err, repository.ErrNotFound):
		// the comparison stands without a date
	default:
		return nil, storeError(op, err)
	}

	return result, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
