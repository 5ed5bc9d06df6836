package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

const sessionCookie = "songbook_session"

// SessionStore issues and resolves browser logins.
type SessionStore interface {
	Issue(user models.UserInfo) (string, error)
	Lookup(token string) (*models.UserInfo, error)
	Revoke(token string) error
}

type userKey struct{}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.UserInfo) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFrom returns the signed-in user attached by [LoadSession], or nil.
func UserFrom(ctx context.Context) *models.UserInfo {
	user, _ := ctx.Value(userKey{}).(*models.UserInfo)
	return user
}

// LoadSession attaches the user of a valid session cookie to the request context.
// Requests without one continue anonymously.
func LoadSession(sessions SessionStore, logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := sessions.Lookup(cookie.Value)
			switch {
			case err == nil:
				r = r.WithContext(WithUser(r.Context(), user))
			case errors.Is(err, shared.ErrSessionNotFound):
			default:
				logger.Error("session lookup failed", "error", err)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession rejects anonymous requests before the wrapped handler reads the body.
func RequireSession(html Serializer, logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserFrom(r.Context()) == nil {
				write(w, negotiated(r, html), statusResult(http.StatusUnauthorized, "not signed in"), logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func setSessionCookie(w http.ResponseWriter, value string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
