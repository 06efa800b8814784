package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fortuna/courtside/internal/cache"
	"github.com/fortuna/courtside/internal/service"
	"github.com/fortuna/courtside/internal/store"
)

// HealthChecker is anything the health endpoint can ping
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	db           *store.Database
	cache        HealthChecker
	memo         *cache.Memo
	engine       *service.AggregationEngine
	resolver     *service.MatchupResolver
	queryTimeout time.Duration
}

// NewHandler creates a new handler
func NewHandler(db *store.Database, memo *cache.Memo, cacheHealth HealthChecker, queryTimeout time.Duration) *Handler {
	return &Handler{
		db:           db,
		cache:        cacheHealth,
		memo:         memo,
		engine:       service.NewAggregationEngine(db),
		resolver:     service.NewMatchupResolver(db),
		queryTimeout: queryTimeout,
	}
}

func (h *Handler) queryContext(r *http.Request) (context.Context, context.CancelFunc) {
	if h.queryTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.queryTimeout)
}

// HealthCheck reports store and cache reachability
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]interface{}{
		"status":  "healthy",
		"service": "courtside",
		"driver":  h.db.Driver(),
		"schema":  h.db.Schema(),
	}

	if err := h.db.HealthCheck(r.Context()); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["database"] = err.Error()
	} else {
		body["database"] = "ok"
	}

	switch {
	case h.cache == nil:
		body["cache"] = "disabled"
	case h.cache.HealthCheck(r.Context()) != nil:
		// memoization is optional, so a dead cache only degrades
		body["cache"] = "unreachable"
		if status == http.StatusOK {
			body["status"] = "degraded"
		}
	default:
		body["cache"] = "ok"
	}

	respondJSON(w, status, body)
}

// GetTeams returns every team by name
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.queryContext(r)
	defer cancel()

	teams, err := cache.Remember(ctx, h.memo, h.memo.Key("teams"), h.engine.Teams)
	if err != nil {
		respondServiceError(w, "Failed to fetch teams", err)
		return
	}

	respondJSON(w, http.StatusOK, teams)
}

// GetLeagueMeans returns the league-wide averages
func (h *Handler) GetLeagueMeans(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.queryContext(r)
	defer cancel()

	means, err := cache.Remember(ctx, h.memo, h.memo.Key("league", "means"), h.engine.MeanValues)
	if err != nil {
		respondServiceError(w, "Failed to compute league means", err)
		return
	}

	respondJSON(w, http.StatusOK, means)
}

// GetLeagueTotals returns the season counters
func (h *Handler) GetLeagueTotals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.queryContext(r)
	defer cancel()

	totals, err := cache.Remember(ctx, h.memo, h.memo.Key("league", "totals"), h.engine.TotalStats)
	if err != nil {
		respondServiceError(w, "Failed to compute season totals", err)
		return
	}

	respondJSON(w, http.StatusOK, totals)
}

// GetTeamStats returns the seven per-game rankings
func (h *Handler) GetTeamStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.queryContext(r)
	defer cancel()

	stats, err := cache.Remember(ctx, h.memo, h.memo.Key("teams", "stats"), h.engine.TeamStats)
	if err != nil {
		respondServiceError(w, "Failed to compute team stats", err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

type recordsResponse struct {
	Records        []service.WinLoss `json:"records"`
	LeagueMeanWins *float64          `json:"league_mean_wins"`
}

// GetTeamRecords returns every team's wins and losses with the league mean
func (h *Handler) GetTeamRecords(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.queryContext(r)
	defer cancel()

	records, err := cache.Remember(ctx, h.memo, h.memo.Key("teams", "records"), h.engine.WinsLosses)
	if err != nil {
		respondServiceError(w, "Failed to fetch team records", err)
		return
	}

	resp := recordsResponse{Records: records}
	if mean, ok := service.LeagueWinMean(records); ok {
		resp.LeagueMeanWins = &mean
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetTeamShooting returns shooting percentages per team
func (h *Handler) GetTeamShooting(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.queryContext(r)
	defer cancel()

	splits, err := cache.Remember(ctx, h.memo, h.memo.Key("teams", "shooting"), h.engine.ShootingSplits)
	if err != nil {
		respondServiceError(w, "Failed to compute shooting splits", err)
		return
	}

	respondJSON(w, http.StatusOK, splits)
}

// GetMatchups lists the matches two teams played against each other
func (h *Handler) GetMatchups(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.queryContext(r)
	defer cancel()

	m, err := h.qualifyingMatches(ctx, r)
	if err != nil {
		respondServiceError(w, "Failed to fetch matchups", err)
		return
	}

	respondJSON(w, http.StatusOK, m)
}

// ResolveMatchup applies a match selection to a matchup. match_id may repeat;
// zero or several ids answer with an advisory message.
func (h *Handler) ResolveMatchup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.queryContext(r)
	defer cancel()

	m, err := h.qualifyingMatches(ctx, r)
	if err != nil {
		respondServiceError(w, "Failed to fetch matchups", err)
		return
	}

	result, err := h.resolver.ResolveSelection(ctx, m, r.URL.Query()["match_id"])
	if err != nil {
		respondServiceError(w, "Failed to resolve matchup", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) qualifyingMatches(ctx context.Context, r *http.Request) (*service.Matchup, error) {
	teamA := strings.TrimSpace(r.URL.Query().Get("team_a"))
	teamB := strings.TrimSpace(r.URL.Query().Get("team_b"))

	return cache.Remember(ctx, h.memo, h.memo.Key("matchups", teamA, teamB),
		func(ctx context.Context) (*service.Matchup, error) {
			return h.resolver.QualifyingMatches(ctx, teamA, teamB)
		})
}

// statusFor maps a service error kind onto an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAmbiguousMatchSelection):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnresolvableSide):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, service.ErrCardinalityMismatch):
		return http.StatusInternalServerError
	case errors.Is(err, service.ErrDataUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	respondJSON(w, status, response)
}

func respondServiceError(w http.ResponseWriter, message string, err error) {
	respondError(w, statusFor(err), message, err)
}
