package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/vedran77/chatty/internal/apierr"
	"github.com/vedran77/chatty/internal/auth"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// TokenParser validates a session token and returns its user id.
type TokenParser interface {
	Parse(token string) (uuid.UUID, error)
}

// Auth rejects requests without a valid session cookie.
func Auth(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserFromCookie(r, tokens)
			if err != nil {
				switch {
				case errors.Is(err, http.ErrNoCookie):
					apierr.Write(w, http.StatusUnauthorized, apierr.TypeAuth, "Unauthorized - no token provided")
				case errors.Is(err, auth.ErrTokenExpired):
					apierr.Write(w, http.StatusUnauthorized, apierr.TypeAuth, "Unauthorized - session expired")
				default:
					apierr.Write(w, http.StatusUnauthorized, apierr.TypeAuth, apierr.MsgInvalidToken)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// UserFromCookie returns http.ErrNoCookie when the session cookie is
// absent or empty, otherwise whatever the parser says.
func UserFromCookie(r *http.Request, tokens TokenParser) (uuid.UUID, error) {
	cookie, err := r.Cookie(auth.CookieName)
	if err != nil || cookie.Value == "" {
		return uuid.Nil, http.ErrNoCookie
	}
	return tokens.Parse(cookie.Value)
}

func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID extracts user ID from request context
func GetUserID(ctx context.Context) uuid.UUID {
	return ctx.Value(UserIDKey).(uuid.UUID)
}
