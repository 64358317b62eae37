package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/TWRT/law-office/internal/requestctx"
)

// RequireSession rejects requests without a valid bearer session and stores
// the session in the request context for the wrapped handler.
func (h *AuthHandler) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := h.auth.CurrentSession(r.Context(), bearerToken(r))
		if err != nil {
			writeError(w, h.log.WithField("operation", "handlers.Auth.RequireSession"), err)
			return
		}
		next(w, r.WithContext(requestctx.WithSession(r.Context(), session)))
	}
}

// RequireInviteCaller admits either a valid session or a bearer equal to the
// configured service token. An empty service token only admits sessions.
func (h *AuthHandler) RequireInviteCaller(serviceToken string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if serviceToken != "" && token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(serviceToken)) == 1 {
			next(w, r)
			return
		}
		h.RequireSession(next)(w, r)
	}
}
