package domain

import "time"

// Account is an administrator allowed to publish newsletter issues.
type Account struct {
	ID           string
	Username     string
	PasswordHash string // PHC argon2id string, never logged
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the authenticated caller of a protected operation.
type Identity struct {
	UserID string
}
