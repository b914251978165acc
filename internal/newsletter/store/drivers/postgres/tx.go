package postgres

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }
func (t *txStore) ApplyMigrations() error         { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users                           { return &usersRepo{db: t.tx} }
func (t *txStore) Subscriptions() store.Subscriptions           { return &subscriptionsRepo{db: t.tx} }
func (t *txStore) SubscriptionTokens() store.SubscriptionTokens { return &subscriptionTokensRepo{db: t.tx} }
