package sqlite

import (
	"context"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/domain"
)

type subscriptionTokensRepo struct {
	db dbtx
}

func (r *subscriptionTokensRepo) CreateSubscriptionToken(ctx context.Context, t domain.ConfirmationToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subscription_tokens (subscription_token, subscriber_id) VALUES (?, ?)`,
		t.Token, t.SubscriberID,
	)
	return mapConstraint(err)
}

func (r *subscriptionTokensRepo) GetSubscriberIDByToken(ctx context.Context, token string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT subscriber_id FROM subscription_tokens WHERE subscription_token = ?`, token,
	).Scan(&id)
	if err != nil {
		return "", mapNotFound(err)
	}
	return id, nil
}
