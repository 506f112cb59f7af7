package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/notesfs/notes-service/internal/ratelimit"
	"github.com/sirupsen/logrus"
)

// RateLimit returns middleware that gates every request on the per-IP
// limiter. A denied request gets 429; a limiter failure gets 500 and is
// logged — the gate fails closed rather than letting traffic through
// unmetered.
func RateLimit(limiter ratelimit.Limiter, log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				log.Errorf("Rate limiter failure: %v", err)
				respondError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !allowed {
				respondError(w, http.StatusTooManyRequests, "Too many requests, please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the first proxy-forwarded address, falling back to the
// socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
