package common

import (
	"context"
	"net/http"

	"balance_insight/pkg/core/session"
)

// CookieName carries the session ID.
const CookieName = "bsi_session"

type ctxKey struct{}

// Sessions attaches the visitor's session to the request context, creating
// one and setting the cookie on first contact.
func Sessions(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(CookieName); err == nil {
				id = c.Value
			}
			s, created := store.GetOrCreate(id)
			if created {
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    s.ID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, s)))
		})
	}
}

// FromContext returns the session installed by Sessions.
func FromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(ctxKey{}).(*session.Session)
	return s
}
