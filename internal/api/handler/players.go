package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sandcourt/rallyrank/internal/api/respond"
	"github.com/sandcourt/rallyrank/internal/cache"
	"github.com/sandcourt/rallyrank/internal/elo"
)

type playerResponse struct {
	Name string `json:"name"`
	elo.PlayerDetail
}

// GetPlayers lists every player that has appeared in a locked-in match.
// @Summary List players
// @Description Returns player names in leaderboard order.
// @Tags players
// @Produce json
// @Success 200 {array} string
// @Failure 503 {object} respond.ErrorResponse
// @Router /players [get]
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	names := make([]string, 0, len(snap.Rankings))
	for _, row := range snap.Rankings {
		names = append(names, row.Name)
	}
	h.serveCached(w, r, "players", cache.TTLStandings, names)
}

// GetPlayer returns the full detail view for one player.
// @Summary Get player detail
// @Description Returns ranking, overall record, and per-partner and per-opponent breakdowns.
// @Tags players
// @Produce json
// @Param name path string true "Player name"
// @Success 200 {object} handler.playerResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /players/{name} [get]
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")

	detail, found := snap.PlayerDetail(name)
	if !found {
		respond.WriteError(w, http.StatusNotFound, "PLAYER_NOT_FOUND",
			"No such player: "+name)
		return
	}
	h.serveCached(w, r, "player:"+name, cache.TTLStandings, playerResponse{
		Name:         name,
		PlayerDetail: detail,
	})
}

// GetPlayerMatches returns a player's match history.
// @Summary Get player match history
// @Description Returns every match the player appeared in, most recent first, with per-match rating movement.
// @Tags players
// @Produce json
// @Param name path string true "Player name"
// @Success 200 {array} elo.MatchSummary
// @Failure 404 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /players/{name}/matches [get]
func (h *Handler) GetPlayerMatches(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")

	if _, found := snap.PlayerDetail(name); !found {
		respond.WriteError(w, http.StatusNotFound, "PLAYER_NOT_FOUND",
			"No such player: "+name)
		return
	}
	h.serveCached(w, r, "player-matches:"+name, cache.TTLStandings,
		snap.PlayerMatchHistory(name))
}
