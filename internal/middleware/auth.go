package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/Vasu1712/scenyx-chat/internal/api/render"
	"github.com/Vasu1712/scenyx-chat/internal/auth"
	"github.com/Vasu1712/scenyx-chat/internal/models"
	apperrors "github.com/Vasu1712/scenyx-chat/pkg/errors"
)

// TokenAuthenticator resolves a bearer token to its user.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// RequireAuth rejects requests without a valid token and stores the
// authenticated user in the request context.
func RequireAuth(a TokenAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if !ok {
				render.Error(w, r, apperrors.ErrUnauthorized)
				return
			}
			u, err := a.Authenticate(r.Context(), token)
			if errors.Is(err, auth.ErrInvalidToken) {
				render.Error(w, r, apperrors.Unauthorized("invalid token"))
				return
			}
			if err != nil {
				render.Error(w, r, apperrors.Internal("could not verify token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), u)))
		})
	}
}
