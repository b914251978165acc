package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/domain"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/email"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/metrics"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/store"
	"github.com/aussiebroadwan/newsletter/pkg/cryptox"
	"github.com/aussiebroadwan/newsletter/pkg/idx"
	"github.com/aussiebroadwan/newsletter/pkg/slogx"
	"github.com/samber/oops"
)

type SubscriptionService struct {
	Store     store.Store
	Sender    email.Sender
	Templates *email.Templates
	Metrics   *metrics.Metrics
}

// ParseNewSubscriber validates form input. The name is checked before the
// email.
func ParseNewSubscriber(rawEmail, rawName string) (domain.NewSubscriber, error) {
	name, err := domain.ParseSubscriberName(rawName)
	if err != nil {
		return domain.NewSubscriber{}, err
	}
	addr, err := domain.ParseSubscriberEmail(rawEmail)
	if err != nil {
		return domain.NewSubscriber{}, err
	}
	return domain.NewSubscriber{Email: addr, Name: name}, nil
}

// Subscribe stores a pending subscriber together with its confirmation token
// in one transaction, then mails the confirmation link. A failed send does
// not undo the stored subscriber.
func (s *SubscriptionService) Subscribe(ctx context.Context, rawEmail, rawName string) error {
	log := slogx.FromContext(ctx)

	ns, err := ParseNewSubscriber(rawEmail, rawName)
	if err != nil {
		s.Metrics.Subscription(metrics.OutcomeInvalid)
		return &OnboardError{Kind: OnboardValidation, Err: err}
	}

	sub := domain.Subscriber{
		ID:           idx.New().String(),
		Email:        ns.Email.String(),
		Name:         ns.Name.String(),
		SubscribedAt: time.Now().UTC(),
		Status:       domain.StatusPendingConfirmation,
	}

	token, err := cryptox.GenerateSubscriptionToken()
	if err != nil {
		s.Metrics.Subscription(metrics.OutcomeError)
		return &OnboardError{Kind: OnboardUnexpected, Err: oops.In("subscribe").Wrapf(err, "failed to generate subscription token")}
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Subscriptions().CreateSubscription(ctx, sub); err != nil {
			return oops.In("subscribe").Wrapf(err, "failed to insert new subscriber in the database")
		}
		if err := tx.SubscriptionTokens().CreateSubscriptionToken(ctx, domain.ConfirmationToken{
			Token:        token,
			SubscriberID: sub.ID,
		}); err != nil {
			return oops.In("subscribe").Wrapf(err, "failed to store the confirmation token for a new subscriber")
		}
		return nil
	})
	if err != nil {
		s.Metrics.Subscription(metrics.OutcomeError)
		return &OnboardError{Kind: OnboardUnexpected, Err: err}
	}

	log = log.With(slog.String("subscriber_id", sub.ID))
	log.Info("new subscriber saved")

	subject, html, text, err := s.Templates.Confirmation(token)
	if err != nil {
		s.Metrics.Subscription(metrics.OutcomeError)
		return &OnboardError{Kind: OnboardUnexpected, Err: oops.In("subscribe").Wrapf(err, "failed to render confirmation email")}
	}
	if err := s.Sender.Send(ctx, ns.Email, subject, html, text); err != nil {
		s.Metrics.Subscription(metrics.OutcomeError)
		return &OnboardError{Kind: OnboardUnexpected, Err: oops.In("subscribe").With("subscriber_id", sub.ID).Wrapf(err, "failed to send a confirmation email")}
	}

	s.Metrics.Subscription(metrics.OutcomeSuccess)
	return nil
}

// Confirm moves the subscriber owning token to confirmed. Confirming twice
// succeeds.
func (s *SubscriptionService) Confirm(ctx context.Context, token string) error {
	if token == "" {
		s.Metrics.Confirmation(metrics.OutcomeInvalid)
		return &ConfirmError{Kind: ConfirmUnknownToken, Err: store.ErrNotFound}
	}

	var subscriberID string
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		id, err := tx.SubscriptionTokens().GetSubscriberIDByToken(ctx, token)
		if err != nil {
			return err
		}
		subscriberID = id
		return tx.Subscriptions().ConfirmSubscription(ctx, id)
	})
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		s.Metrics.Confirmation(metrics.OutcomeInvalid)
		return &ConfirmError{Kind: ConfirmUnknownToken, Err: err}
	default:
		s.Metrics.Confirmation(metrics.OutcomeError)
		return &ConfirmError{Kind: ConfirmUnexpected, Err: oops.In("confirm").Wrapf(err, "failed to mark subscriber as confirmed")}
	}

	s.Metrics.Confirmation(metrics.OutcomeSuccess)
	slogx.FromContext(ctx).Info("subscription confirmed", slog.String("subscriber_id", subscriberID))
	return nil
}
