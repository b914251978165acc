package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/domain"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/session"
	"github.com/aussiebroadwan/newsletter/pkg/slogx"
	"github.com/samber/oops"
)

// SessionService owns the anonymous/authenticated state of admin browsers.
type SessionService struct {
	Sessions    session.Store
	Credentials *CredentialService
}

// Login checks c and, on success, binds the user to a brand new session id.
// priorID, the id the browser arrived with, is discarded either way so a
// planted id can never become authenticated.
func (s *SessionService) Login(ctx context.Context, priorID string, c Credentials) (string, error) {
	log := slogx.FromContext(ctx)

	userID, err := s.Credentials.Validate(ctx, c)
	if err != nil {
		return "", err
	}

	if err := s.Sessions.Delete(ctx, priorID); err != nil {
		log.Warn("failed to discard prior session", slog.Any("error", err))
	}

	id, err := session.NewID()
	if err != nil {
		return "", &AuthError{Kind: AuthUnexpected, Err: oops.In("session").Wrapf(err, "failed to generate session id")}
	}
	if err := s.Sessions.Set(ctx, id, session.Data{UserID: userID}); err != nil {
		return "", &AuthError{Kind: AuthUnexpected, Err: oops.In("session").With("user_id", userID).Wrapf(err, "failed to store session")}
	}

	log.Info("user logged in", slog.String("user_id", userID))
	return id, nil
}

// RequireAuthenticated resolves a session id to its identity. A missing or
// unknown id returns ErrNotAuthenticated.
func (s *SessionService) RequireAuthenticated(ctx context.Context, id string) (domain.Identity, error) {
	if id == "" {
		return domain.Identity{}, ErrNotAuthenticated
	}

	data, err := s.Sessions.Get(ctx, id)
	if errors.Is(err, session.ErrNotFound) || (err == nil && data.UserID == "") {
		return domain.Identity{}, ErrNotAuthenticated
	}
	if err != nil {
		return domain.Identity{}, oops.In("session").Wrapf(err, "failed to load session")
	}
	return domain.Identity{UserID: data.UserID}, nil
}

// Logout purges the session. Later lookups of id fail.
func (s *SessionService) Logout(ctx context.Context, id string) error {
	if err := s.Sessions.Delete(ctx, id); err != nil {
		return oops.In("session").Wrapf(err, "failed to purge session")
	}
	slogx.FromContext(ctx).Info("user logged out")
	return nil
}
