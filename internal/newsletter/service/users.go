package service

import (
	"context"
	"errors"
	"strings"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/domain"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/store"
	"github.com/aussiebroadwan/newsletter/pkg/cryptox"
	"github.com/aussiebroadwan/newsletter/pkg/idx"
	"github.com/samber/oops"
)

var (
	ErrUsernameRequired     = errors.New("username is required")
	ErrUsernameAlreadyTaken = errors.New("username already taken")
	ErrUserNotFound         = errors.New("user not found")
)

// UserService manages admin accounts outside the request path (CLI, pages).
type UserService struct {
	Store store.Store
}

// GetUserByID fetches an account by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.Account, error) {
	acct, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, ErrUserNotFound
	}
	return acct, err
}

// CreateAccount adds an admin with a generated password, returned once.
func (s *UserService) CreateAccount(ctx context.Context, username string) (domain.Account, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.Account{}, "", ErrUsernameRequired
	}

	password, err := cryptox.GeneratePassword()
	if err != nil {
		return domain.Account{}, "", oops.In("users").Wrapf(err, "failed to generate password")
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Account{}, "", oops.In("users").Wrapf(err, "failed to hash password")
	}

	acct := domain.Account{ID: idx.New().String(), Username: username, PasswordHash: hash}
	if err := s.Store.Users().CreateUser(ctx, acct); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, "", ErrUsernameAlreadyTaken
		}
		return domain.Account{}, "", oops.In("users").With("username", username).Wrapf(err, "failed to create account")
	}
	return acct, password, nil
}

// ResetPassword replaces the password of username with a generated one.
func (s *UserService) ResetPassword(ctx context.Context, username string) (string, error) {
	acct, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", oops.In("users").With("username", username).Wrapf(err, "failed to look up account")
	}

	password, err := cryptox.GeneratePassword()
	if err != nil {
		return "", oops.In("users").Wrapf(err, "failed to generate password")
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return "", oops.In("users").Wrapf(err, "failed to hash password")
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, acct.ID, hash); err != nil {
		return "", oops.In("users").With("username", username).Wrapf(err, "failed to store password")
	}
	return password, nil
}
