package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/notesfs/notes-service/internal/middleware"
	"github.com/notesfs/notes-service/internal/models"
	"github.com/notesfs/notes-service/internal/service"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authData is the register/login response payload.
type authData struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Token    string `json:"token"`
}

func toAuthData(user *models.User, token string) authData {
	return authData{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Username: user.Username,
		Token:    token,
	}
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	user, token, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		respondError(w, http.StatusBadRequest, "User already exists")
		return
	case errors.Is(err, service.ErrUsernameTaken):
		respondError(w, http.StatusBadRequest, "Username already taken")
		return
	case err != nil:
		h.serverError(w, err)
		return
	}

	h.setTokenCookie(w, token)
	respond(w, http.StatusCreated, "User registered successfully", toAuthData(user, token))
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	user, token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		h.serverError(w, err)
		return
	}

	h.setTokenCookie(w, token)
	respond(w, http.StatusOK, "Login successful", toAuthData(user, token))
}

// Logout clears the token cookie
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearTokenCookie(w)
	respond(w, http.StatusOK, "Logged out successfully", nil)
}

// Profile returns the authenticated user's record
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())

	user, err := h.svc.Profile(r.Context(), caller.ID)
	if errors.Is(err, service.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.serverError(w, err)
		return
	}

	respond(w, http.StatusOK, "User profile retrieved successfully", user)
}
