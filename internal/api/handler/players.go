package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/albapepper/career-analyzer/internal/api/respond"
	"github.com/albapepper/career-analyzer/internal/cache"
	"github.com/albapepper/career-analyzer/internal/roster"
	"github.com/albapepper/career-analyzer/internal/store"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 50
)

// PlayerView is one player as returned by the API.
type PlayerView struct {
	roster.Player
	DisplayName string `json:"display_name"`
	Position    string `json:"position"`
}

// TopPlayersResponse is the body of GET /api/v1/players/top.
type TopPlayersResponse struct {
	Limit   int          `json:"limit"`
	Players []PlayerView `json:"players"`
}

// SummaryResponse is the body of GET /api/v1/summary.
type SummaryResponse struct {
	TotalPlayers   int              `json:"total_players"`
	AverageOverall *float64         `json:"average_overall"`
	AverageAge     *float64         `json:"average_age"`
	BestPlayer     *PlayerView      `json:"best_player"`
	LastImport     *store.ImportRun `json:"last_import"`
}

func view(p roster.Player) PlayerView {
	return PlayerView{Player: p, DisplayName: p.DisplayName(), Position: p.Position("N/A")}
}

// GetTopPlayers returns the highest rated players.
// @Summary Top players by overall
// @Description Returns rated players ordered by overall rating (ties by player id).
// @Tags players
// @Produce json
// @Param limit query int false "Number of players (1-50)" default(10)
// @Success 200 {object} TopPlayersResponse
// @Success 304 "Not modified"
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /players/top [get]
func (h *Handler) GetTopPlayers(w http.ResponseWriter, r *http.Request) {
	limit := defaultTopLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		limit = min(n, maxTopLimit)
	}

	if err := h.syncRun(r.Context()); err != nil {
		h.logger.Warn("Reading last import failed", "error", err)
	}

	cacheKey := fmt.Sprintf("players:top:%d", limit)
	if h.serveCached(w, r, cacheKey, cache.TTLSummary) {
		return
	}

	players, err := h.gw.Players(r.Context(), store.Select().
		Where("overallrating", store.OpNotNull, nil).
		OrderByDesc("overallrating").
		Limit(limit))
	if err != nil {
		h.logger.Error("Loading top players failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", "Could not load players")
		return
	}

	resp := TopPlayersResponse{Limit: limit, Players: make([]PlayerView, 0, len(players))}
	for _, p := range players {
		resp.Players = append(resp.Players, view(p))
	}
	h.writeCached(w, cacheKey, resp, cache.TTLSummary)
}

// GetSummary returns roster totals and the last import run.
// @Summary Roster summary
// @Description Returns totals, averages, the best rated player and the most recent import run.
// @Tags players
// @Produce json
// @Success 200 {object} SummaryResponse
// @Success 304 "Not modified"
// @Failure 500 {object} respond.ErrorResponse
// @Router /summary [get]
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	if err := h.syncRun(r.Context()); err != nil {
		h.logger.Warn("Reading last import failed", "error", err)
	}

	const cacheKey = "summary"
	if h.serveCached(w, r, cacheKey, cache.TTLSummary) {
		return
	}

	resp, err := h.summary(r)
	if err != nil {
		h.logger.Error("Building summary failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", "Could not build summary")
		return
	}
	h.writeCached(w, cacheKey, resp, cache.TTLSummary)
}

func (h *Handler) summary(r *http.Request) (SummaryResponse, error) {
	ctx := r.Context()
	var resp SummaryResponse
	var err error

	if resp.TotalPlayers, err = h.gw.Count(ctx, store.Select()); err != nil {
		return resp, err
	}
	if v, ok, err := h.gw.Scalar(ctx, store.AggAvg, "overallrating", store.Select()); err != nil {
		return resp, err
	} else if ok {
		resp.AverageOverall = &v
	}
	if v, ok, err := h.gw.Scalar(ctx, store.AggAvg, "age", store.Select()); err != nil {
		return resp, err
	} else if ok {
		resp.AverageAge = &v
	}
	top, err := h.gw.Players(ctx, store.Select().OrderByDesc("overallrating").Limit(1))
	if err != nil {
		return resp, err
	}
	if len(top) > 0 {
		best := view(top[0])
		resp.BestPlayer = &best
	}
	if resp.LastImport, err = h.gw.LastImport(ctx); err != nil {
		return resp, err
	}
	return resp, nil
}

// serveCached writes a cached payload (or 304) and reports whether it did.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration) bool {
	data, etag, ok := h.cache.Get(key)
	if !ok {
		return false
	}
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return true
	}
	respond.WriteJSON(w, data, etag, ttl, true)
	return true
}

func (h *Handler) writeCached(w http.ResponseWriter, key string, v interface{}, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_FAILED", "Could not encode response")
		return
	}
	etag := h.cache.Set(key, data, ttl)
	respond.WriteJSON(w, data, etag, ttl, false)
}
