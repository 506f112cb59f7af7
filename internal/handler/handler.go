// Package handler exposes the HTTP surface: user registration and sessions,
// private note CRUD, and the public read-only note routes. Every response
// uses the status/code/message/data envelope.
package handler

import (
	"net/http"
	"time"

	"github.com/notesfs/notes-service/internal/middleware"
	"github.com/notesfs/notes-service/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc          *service.Service
	log          *logrus.Logger
	secureCookie bool
}

// NewHandler initializes the HTTP handlers. secureCookie marks the token
// cookie Secure and should be set in production.
func NewHandler(svc *service.Service, log *logrus.Logger, secureCookie bool) *Handler {
	return &Handler{svc: svc, log: log, secureCookie: secureCookie}
}

func (h *Handler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.secureCookie,
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
	})
}

func (h *Handler) clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.secureCookie,
		MaxAge:   -1,
	})
}

// serverError logs the fault and returns the generic message; internal
// detail never reaches the client.
func (h *Handler) serverError(w http.ResponseWriter, err error) {
	h.log.Errorf("Internal error: %v", err)
	respondError(w, http.StatusInternalServerError, "Internal server error")
}
