package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/domain"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/email"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/metrics"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/store"
	"github.com/aussiebroadwan/newsletter/pkg/slogx"
	"github.com/samber/oops"
)

type NewsletterService struct {
	Store       store.Store
	Sender      email.Sender
	Credentials *CredentialService
	Metrics     *metrics.Metrics
}

// AuthenticateBasic is the Basic-Auth entry point. Any credential failure
// becomes PublishAuth, infrastructure failures PublishUnexpected.
func (s *NewsletterService) AuthenticateBasic(ctx context.Context, c Credentials) (domain.Identity, error) {
	userID, err := s.Credentials.Validate(ctx, c)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.Metrics.Publish(metrics.OutcomeUnauthorized)
			return domain.Identity{}, &PublishError{Kind: PublishAuth, Err: err}
		}
		s.Metrics.Publish(metrics.OutcomeError)
		return domain.Identity{}, &PublishError{Kind: PublishUnexpected, Err: err}
	}
	return domain.Identity{UserID: userID}, nil
}

// Publish sends issue to every confirmed subscriber. Stored addresses are
// re-validated and invalid ones are skipped with a warning. The first
// transport failure aborts the remaining fan-out.
func (s *NewsletterService) Publish(ctx context.Context, issue domain.NewsletterIssue, who domain.Identity) (domain.PublishReport, error) {
	var report domain.PublishReport

	if who.UserID == "" {
		s.Metrics.Publish(metrics.OutcomeUnauthorized)
		return report, &PublishError{Kind: PublishAuth, Err: ErrNotAuthenticated}
	}

	log := slogx.FromContext(ctx).With(slog.String("user_id", who.UserID))

	stored, err := s.Store.Subscriptions().ListConfirmedEmails(ctx)
	if err != nil {
		s.Metrics.Publish(metrics.OutcomeError)
		return report, &PublishError{Kind: PublishUnexpected, Err: oops.In("publish").Wrapf(err, "failed to retrieve confirmed subscribers")}
	}

	for _, raw := range stored {
		recipient, err := domain.ParseSubscriberEmail(raw)
		if err != nil {
			log.Warn("Skipping a confirmed subscriber. Their stored contact details are invalid",
				slog.String("stored_email", raw),
				slog.Any("error", err),
			)
			report.Skipped++
			s.Metrics.Delivery(metrics.OutcomeSkipped)
			continue
		}

		if err := s.Sender.Send(ctx, recipient, issue.Title, issue.HTML, issue.Text); err != nil {
			s.Metrics.Delivery(metrics.OutcomeFailed)
			s.Metrics.Publish(metrics.OutcomeError)
			return report, &PublishError{
				Kind: PublishUnexpected,
				Err: oops.In("publish").
					With("recipient", recipient.String()).
					With("delivered", report.Delivered).
					Wrapf(err, "failed to send newsletter issue to %s", recipient),
			}
		}
		report.Delivered++
		s.Metrics.Delivery(metrics.OutcomeDelivered)
	}

	s.Metrics.Publish(metrics.OutcomeSuccess)
	log.Info("newsletter issue published",
		slog.Int("delivered", report.Delivered),
		slog.Int("skipped", report.Skipped),
	)
	return report, nil
}
