package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sandcourt/rallyrank/internal/api/respond"
	"github.com/sandcourt/rallyrank/internal/store"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new account.
// @Summary Register
// @Description Creates an account that can enter and lock sessions.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body handler.credentialsRequest true "Account credentials"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 409 {object} respond.ErrorResponse
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Malformed JSON body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if len(req.Username) < 3 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_USERNAME",
			"Username must be at least 3 characters")
		return
	}
	if len(req.Password) < 8 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_PASSWORD",
			"Password must be at least 8 characters")
		return
	}

	hash, err := h.auth.HashPassword(req.Password)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "HASH_FAILED",
			"Failed to process password")
		return
	}

	user, err := h.store.CreateUser(r.Context(), req.Username, hash)
	if errors.Is(err, store.ErrDuplicate) {
		respond.WriteError(w, http.StatusConflict, "USERNAME_TAKEN",
			"Username is already registered")
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "CREATE_FAILED",
			"Failed to create account")
		return
	}
	respond.WriteJSONObject(w, http.StatusCreated, map[string]any{
		"id":       user.ID,
		"username": user.Username,
	})
}

// Login exchanges credentials for a bearer token.
// @Summary Login
// @Description Returns a JWT for use in the Authorization header.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body handler.credentialsRequest true "Account credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} respond.ErrorResponse
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Malformed JSON body")
		return
	}

	user, err := h.store.UserByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil || !h.auth.CheckPassword(user.PasswordHash, req.Password) {
		// Same response for unknown user and wrong password.
		respond.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS",
			"Invalid username or password")
		return
	}

	token, err := h.auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "TOKEN_FAILED",
			"Failed to issue token")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"token":    token,
		"username": user.Username,
	})
}
