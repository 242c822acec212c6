package handler

import (
	"net/http"

	"github.com/sandcourt/rallyrank/internal/api/respond"
	"github.com/sandcourt/rallyrank/internal/cache"
)

// GetRankings returns the leaderboard.
// @Summary Get rankings
// @Description Returns every player ordered by points, then average point differential, win rate, rating, and name.
// @Tags standings
// @Produce json
// @Success 200 {array} elo.RankingRow
// @Failure 503 {object} respond.ErrorResponse
// @Router /rankings [get]
func (h *Handler) GetRankings(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	h.serveCached(w, r, "rankings", cache.TTLStandings, snap.Rankings)
}

// GetTimeline returns the rating timeline.
// @Summary Get rating timeline
// @Description Returns one point per dated match day with every player's rating carried forward.
// @Tags standings
// @Produce json
// @Success 200 {array} elo.TimelinePoint
// @Failure 503 {object} respond.ErrorResponse
// @Router /timeline [get]
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	h.serveCached(w, r, "timeline", cache.TTLStandings, snap.Timeline)
}

// GetMatches returns the full processed match list.
// @Summary Get matches
// @Description Returns every locked-in match with derived winner and rating deltas, most recent first.
// @Tags standings
// @Produce json
// @Success 200 {array} elo.MatchRow
// @Failure 503 {object} respond.ErrorResponse
// @Router /matches [get]
func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	h.serveCached(w, r, "matches", cache.TTLStandings, snap.Matches)
}

// Recompute forces a full recompute of the derived state.
// @Summary Force recompute
// @Description Rebuilds all derived statistics from the locked-in match list. Requires authentication.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} respond.ErrorResponse
// @Router /admin/recompute [post]
func (h *Handler) Recompute(w http.ResponseWriter, r *http.Request) {
	snap, err := h.standings.Recompute(r.Context())
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "RECOMPUTE_FAILED", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"version": snap.Version,
		"matches": snap.MatchCount(),
		"players": snap.PlayerCount(),
	})
}
