package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/domain"
)

type subscriptionsRepo struct {
	db dbtx
}

func (r *subscriptionsRepo) CreateSubscription(ctx context.Context, s domain.Subscriber) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, email, name, subscribed_at, status) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.Email, s.Name, s.SubscribedAt.UTC(), string(s.Status),
	)
	return mapConstraint(err)
}

func (r *subscriptionsRepo) GetSubscriptionByID(ctx context.Context, id string) (domain.Subscriber, error) {
	var s domain.Subscriber
	var status string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, name, subscribed_at, status FROM subscriptions WHERE id = ?`, id,
	).Scan(&s.ID, &s.Email, &s.Name, &s.SubscribedAt, &status)
	if err != nil {
		return domain.Subscriber{}, mapNotFound(err)
	}
	s.Status = domain.SubscriberStatus(status)
	return s, nil
}

func (r *subscriptionsRepo) ConfirmSubscription(ctx context.Context, id string) error {
	return mustAffectOne(r.db.ExecContext(ctx,
		`UPDATE subscriptions SET status = 'confirmed' WHERE id = ?`, id,
	))
}

func (r *subscriptionsRepo) ListConfirmedEmails(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT email FROM subscriptions WHERE status = 'confirmed' ORDER BY subscribed_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

func (r *subscriptionsRepo) DeletePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE status = 'pending_confirmation' AND subscribed_at < ?`,
		cutoff.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
