package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/metrics"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/store"
	"github.com/aussiebroadwan/newsletter/pkg/cryptox"
	"github.com/aussiebroadwan/newsletter/pkg/slogx"
	"github.com/aussiebroadwan/newsletter/pkg/workerx"
	"github.com/samber/oops"
)

// dummyHash is verified against when the username is unknown, so that both
// paths do the same argon2 work. No password is known to match it.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=1$gZiv/M1gPc22ElAH/Jh1Hw$CwOrkoo7oJBQ/iyh7uJ0LO2aLEfrHwTWllSAxT0zRno"

var errUnknownUsername = errors.New("unknown username")

// Credentials is a username/password pair as presented by a client.
type Credentials struct {
	Username string
	Password string
}

// CredentialService verifies and replaces admin passwords. Hashing runs on
// Pool, never on the calling goroutine.
type CredentialService struct {
	Store   store.Store
	Pool    *workerx.Pool
	Metrics *metrics.Metrics
}

// Validate returns the user id for valid credentials. Unknown usernames,
// wrong passwords and unparseable stored hashes all yield
// AuthInvalidCredentials; storage and worker failures yield AuthUnexpected.
func (s *CredentialService) Validate(ctx context.Context, c Credentials) (string, error) {
	log := slogx.FromContext(ctx)
	start := time.Now()

	var userID string
	expected := dummyHash

	acct, err := s.Store.Users().GetUserByUsername(ctx, c.Username)
	switch {
	case err == nil:
		userID = acct.ID
		expected = acct.PasswordHash
	case errors.Is(err, store.ErrNotFound):
	default:
		s.Metrics.Login(metrics.OutcomeError)
		return "", &AuthError{Kind: AuthUnexpected, Err: oops.In("credentials").Wrapf(err, "failed to retrieve stored credentials")}
	}

	var verifyErr error
	if err := s.Pool.Do(ctx, func() {
		verifyErr = cryptox.VerifyPassword(c.Password, expected)
	}); err != nil {
		s.Metrics.Login(metrics.OutcomeError)
		return "", &AuthError{Kind: AuthUnexpected, Err: oops.In("credentials").Wrapf(err, "failed to dispatch password verification")}
	}
	s.Metrics.PasswordVerify(time.Since(start))

	if errors.Is(verifyErr, cryptox.ErrMalformedHash) && userID != "" {
		log.Warn("stored password hash is malformed", slog.String("user_id", userID))
	}

	if verifyErr == nil && userID == "" {
		verifyErr = errUnknownUsername
	}
	if verifyErr != nil {
		s.Metrics.Login(metrics.OutcomeInvalid)
		return "", &AuthError{Kind: AuthInvalidCredentials, Err: verifyErr}
	}

	s.Metrics.Login(metrics.OutcomeSuccess)
	return userID, nil
}

// ChangePassword stores a fresh hash of newPassword for userID.
func (s *CredentialService) ChangePassword(ctx context.Context, userID, newPassword string) error {
	var (
		hash    string
		hashErr error
	)
	if err := s.Pool.Do(ctx, func() {
		hash, hashErr = cryptox.HashPassword(newPassword)
	}); err != nil {
		return oops.In("credentials").With("user_id", userID).Wrapf(err, "failed to dispatch password hashing")
	}
	if hashErr != nil {
		return oops.In("credentials").With("user_id", userID).Wrapf(hashErr, "failed to hash password")
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		return oops.In("credentials").With("user_id", userID).Wrapf(err, "failed to change user's password in the database")
	}

	slogx.FromContext(ctx).Info("password changed", slog.String("user_id", userID))
	return nil
}
