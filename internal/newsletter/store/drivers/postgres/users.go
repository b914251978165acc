package postgres

import (
	"context"

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
		`SELECT `+userColumns+` FROM users WHERE user_id = $1`, id))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.Account, error) {
	a, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (user_id, username, password_hash, created_at, updated_at) VALUES ($1, $2, $3, now(), now())`,
		a.ID, a.Username, a.PasswordHash,
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	return mustAffectOne(r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = now() WHERE user_id = $2`,
		newHash, userID,
	))
}
