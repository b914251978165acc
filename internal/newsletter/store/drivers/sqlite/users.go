package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `user_id, username, password_hash, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.Account, error) {
	a, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = ?`, id))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.Account, error) {
	a, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, a domain.Account) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (user_id, username, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Username, a.PasswordHash, now, now,
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	return mustAffectOne(r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE user_id = ?`,
		newHash, time.Now().UTC(), userID,
	))
}
