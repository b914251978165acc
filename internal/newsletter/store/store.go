package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories are reached through methods so that code
// running inside WithTx only ever sees the transaction's repositories.
type Store interface {
	Users() Users
	Subscriptions() Subscriptions
	SubscriptionTokens() SubscriptionTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error or
	// panics the transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying connection pool.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns an account by id.
	GetUserByID(ctx context.Context, id string) (domain.Account, error)

	// GetUserByUsername is used by credential verification.
	GetUserByUsername(ctx context.Context, username string) (domain.Account, error)

	// CreateUser inserts a new account. ErrAlreadyExists on a taken username.
	CreateUser(ctx context.Context, a domain.Account) error

	// UpdatePasswordHash replaces the stored PHC hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
}

type Subscriptions interface {
	// CreateSubscription inserts a subscriber row.
	CreateSubscription(ctx context.Context, s domain.Subscriber) error

	// GetSubscriptionByID returns a subscriber by id.
	GetSubscriptionByID(ctx context.Context, id string) (domain.Subscriber, error)

	// ConfirmSubscription marks the subscriber confirmed. Confirming an
	// already confirmed subscriber is not an error.
	ConfirmSubscription(ctx context.Context, id string) error

	// ListConfirmedEmails returns the stored email of every confirmed
	// subscriber, unvalidated.
	ListConfirmedEmails(ctx context.Context) ([]string, error)

	// DeletePendingBefore removes pending subscribers created before cutoff,
	// and their tokens by cascade. Returns the number of subscribers removed.
	DeletePendingBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type SubscriptionTokens interface {
	// CreateSubscriptionToken stores a token. ErrAlreadyExists on collision.
	CreateSubscriptionToken(ctx context.Context, t domain.ConfirmationToken) error

	// GetSubscriberIDByToken resolves a token to its subscriber.
	GetSubscriberIDByToken(ctx context.Context, token string) (string, error)
}
