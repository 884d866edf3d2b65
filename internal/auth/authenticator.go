package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Vasu1712/scenyx-chat/internal/models"
	"github.com/Vasu1712/scenyx-chat/internal/storage"
)

// UserGetter loads users referenced by tokens.
type UserGetter interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// Authenticator hands out one active token per user and resolves
// presented tokens to users.
type Authenticator struct {
	issuer   *Issuer
	sessions SessionStore
	users    UserGetter
}

func NewAuthenticator(issuer *Issuer, sessions SessionStore, users UserGetter) *Authenticator {
	return &Authenticator{issuer: issuer, sessions: sessions, users: users}
}

// Obtain returns the user's active token, issuing one if none is registered.
func (a *Authenticator) Obtain(ctx context.Context, userID int64) (string, error) {
	token, err := a.sessions.Get(ctx, userID)
	if err == nil {
		if _, perr := a.issuer.Parse(token); perr == nil {
			return token, nil
		}
		if err := a.sessions.Delete(ctx, userID); err != nil {
			return "", err
		}
	} else if !errors.Is(err, ErrNoSession) {
		return "", err
	}

	token, err = a.issuer.Sign(userID)
	if err != nil {
		return "", err
	}
	if err := a.sessions.Put(ctx, userID, token, a.issuer.TTL()); err != nil {
		return "", err
	}
	return token, nil
}

// Authenticate resolves token to its user. The token must be the one
// currently registered for that user.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := a.issuer.Parse(token)
	if err != nil {
		return nil, err
	}
	active, err := a.sessions.Get(ctx, claims.UserID)
	if errors.Is(err, ErrNoSession) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if active != token {
		return nil, ErrInvalidToken
	}

	u, err := a.users.GetUser(ctx, claims.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("load token user: %w", err)
	}
	return u, nil
}

// TokenFromHeader extracts the credential from an Authorization header of
// the form "Token <t>" or "Bearer <t>".
func TokenFromHeader(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return "", false
	}
	switch strings.ToLower(scheme) {
	case "token", "bearer":
	default:
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
