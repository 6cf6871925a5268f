package auth

import (
	"context"
	"errors"
	"net/http"

	"cricketbook/internal/models"
	"cricketbook/internal/utils"
)

type contextKey string

const sessionKey contextKey = "session"

// Middleware resolves the caller's session when a token is present. Requests
// without a valid token pass through anonymously; RequireUser and
// RequireAdmin enforce access.
func Middleware(svc *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := ExtractTokenFromRequest(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			session, err := svc.Authenticate(r.Context(), token)
			if err != nil {
				if !errors.Is(err, models.ErrUnauthenticated) {
					svc.logger.Error("AUTH", "Failed to resolve session: "+err.Error())
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

func WithSession(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// SessionFrom returns the session resolved by Middleware, or nil.
func SessionFrom(ctx context.Context) *models.Session {
	if s, ok := ctx.Value(sessionKey).(*models.Session); ok {
		return s
	}
	return nil
}

func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFrom(r.Context()) == nil {
			utils.WriteError(w, http.StatusUnauthorized, "Sign in required", models.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := SessionFrom(r.Context())
		if session == nil {
			utils.WriteError(w, http.StatusUnauthorized, "Sign in required", models.ErrUnauthenticated)
			return
		}
		if !session.IsAdmin() {
			utils.WriteError(w, http.StatusForbidden, "Admin access required", models.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
