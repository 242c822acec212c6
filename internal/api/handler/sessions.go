package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sandcourt/rallyrank/internal/api/respond"
	"github.com/sandcourt/rallyrank/internal/auth"
	"github.com/sandcourt/rallyrank/internal/store"
)

type createSessionRequest struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

type addMatchRequest struct {
	TeamA  [2]string `json:"team_a"`
	TeamB  [2]string `json:"team_b"`
	ScoreA int       `json:"score_a"`
	ScoreB int       `json:"score_b"`
	Date   string    `json:"date"`
}

// ListSessions lists all entry sessions.
// @Summary List sessions
// @Description Returns all sessions newest first with match counts and lock state.
// @Tags sessions
// @Produce json
// @Success 200 {array} store.Session
// @Router /sessions [get]
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.ListSessions(r.Context())
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED",
			"Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []store.Session{}
	}
	respond.WriteJSONObject(w, http.StatusOK, sessions)
}

// CreateSession opens a new pending session.
// @Summary Create session
// @Description Opens a pending session that accepts match entries until locked.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session body handler.createSessionRequest true "Session to create"
// @Success 201 {object} store.Session
// @Failure 400 {object} respond.ErrorResponse
// @Router /sessions [post]
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Malformed JSON body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_NAME", "Session name is required")
		return
	}
	if req.Date == "" {
		req.Date = time.Now().Format("2006-01-02")
	} else if !validDate(req.Date) {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_DATE", "Date must be YYYY-MM-DD")
		return
	}

	var userID int64
	if claims, ok := auth.FromContext(r.Context()); ok {
		userID = claims.UserID
	}

	sess, err := h.store.CreateSession(r.Context(), req.Name, req.Date, userID)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "CREATE_FAILED",
			"Failed to create session")
		return
	}
	respond.WriteJSONObject(w, http.StatusCreated, sess)
}

// GetSession returns one session with its entered matches.
// @Summary Get session
// @Description Returns the session and every match entered in it, in entry order.
// @Tags sessions
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /sessions/{id} [get]
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	sess, err := h.store.SessionByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "SESSION_NOT_FOUND",
			"No such session")
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED",
			"Failed to load session")
		return
	}
	matches, err := h.store.SessionMatches(r.Context(), id)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED",
			"Failed to load session matches")
		return
	}
	if matches == nil {
		matches = []store.MatchRecord{}
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"session": sess,
		"matches": matches,
	})
}

// AddMatch appends a match to a pending session.
// @Summary Add match
// @Description Records one doubles match in a pending session. Matches reach the rankings only after the session is locked.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param match body handler.addMatchRequest true "Match to record"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 409 {object} respond.ErrorResponse
// @Router /sessions/{id}/matches [post]
func (h *Handler) AddMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req addMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Malformed JSON body")
		return
	}
	if msg := validateMatch(&req); msg != "" {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_MATCH", msg)
		return
	}

	matchID, err := h.store.InsertMatch(r.Context(), id, store.MatchRecord{
		Date:   req.Date,
		TeamA:  req.TeamA,
		TeamB:  req.TeamB,
		ScoreA: req.ScoreA,
		ScoreB: req.ScoreB,
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		respond.WriteError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "No such session")
		return
	case errors.Is(err, store.ErrSessionLocked):
		respond.WriteError(w, http.StatusConflict, "SESSION_LOCKED",
			"Session is locked and no longer accepts matches")
		return
	case err != nil:
		respond.WriteError(w, http.StatusInternalServerError, "INSERT_FAILED",
			"Failed to record match")
		return
	}
	respond.WriteJSONObject(w, http.StatusCreated, map[string]any{"id": matchID})
}

// LockSession locks in a pending session.
// @Summary Lock session
// @Description Makes the session's matches visible to the rating engine and triggers a recompute. Locking is permanent.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Failure 409 {object} respond.ErrorResponse
// @Router /sessions/{id}/lock [post]
func (h *Handler) LockSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	lockedAt, err := h.store.LockSession(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		respond.WriteError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "No such session")
		return
	case errors.Is(err, store.ErrSessionLocked):
		respond.WriteError(w, http.StatusConflict, "SESSION_LOCKED",
			"Session is already locked")
		return
	case err != nil:
		respond.WriteError(w, http.StatusInternalServerError, "LOCK_FAILED",
			"Failed to lock session")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"id":        id,
		"locked_at": lockedAt.Format(time.RFC3339),
	})
}

func sessionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID",
			"Session ID must be a positive integer")
		return 0, false
	}
	return id, true
}

// validateMatch enforces the doubles format: four distinct non-empty
// players and non-negative scores. Returns an empty string when valid.
func validateMatch(req *addMatchRequest) string {
	names := []string{req.TeamA[0], req.TeamA[1], req.TeamB[0], req.TeamB[1]}
	seen := make(map[string]bool, 4)
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return "All four player names are required"
		}
		names[i] = name
		if seen[name] {
			return "Player " + name + " appears more than once"
		}
		seen[name] = true
	}
	req.TeamA = [2]string{names[0], names[1]}
	req.TeamB = [2]string{names[2], names[3]}

	if req.ScoreA < 0 || req.ScoreB < 0 {
		return "Scores must be non-negative"
	}
	if req.Date != "" && !validDate(req.Date) {
		return "Date must be YYYY-MM-DD"
	}
	return ""
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
