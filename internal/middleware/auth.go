// Package middleware provides the request gates every route passes through:
// the per-IP rate limiter and, on protected routes, the authentication gate.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/notesfs/notes-service/internal/models"
	"github.com/notesfs/notes-service/internal/token"
	"github.com/sirupsen/logrus"
)

// CookieName is the cookie the identity token travels in.
const CookieName = "token"

// UserResolver resolves a verified token's user id to a stored user.
type UserResolver interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
}

// Auth returns middleware that extracts an identity token (cookie first,
// Authorization bearer header as fallback), verifies it, resolves the user,
// and attaches the user to the request context. Requests without a valid
// token that resolves to a user are rejected with 401.
func Auth(tokens *token.Manager, users UserResolver, log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := extractToken(r)
			if tok == "" {
				respondError(w, http.StatusUnauthorized, "Not authorized, no token")
				return
			}

			userID, err := tokens.Verify(tok)
			if err != nil {
				log.Debugf("Token verification failed: %v", err)
				respondError(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}

			user, err := users.FindUserByID(r.Context(), userID)
			if err != nil {
				log.Debugf("Token user %s did not resolve: %v", userID, err)
				respondError(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}
			user.PasswordHash = ""

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// extractToken checks the cookie first, then the Authorization header.
func extractToken(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func respondError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(struct {
		Status  bool   `json:"status"`
		Code    int    `json:"code"`
		Message string `json:"message"`
	}{Status: false, Code: code, Message: message})
}
