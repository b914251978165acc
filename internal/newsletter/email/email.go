// Package email delivers outbound mail: confirmation links to new
// subscribers and issues to confirmed ones.
package email

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/domain"
)

// Sender delivers one message to one recipient. Taking a SubscriberEmail
// means every caller has validated the address first.
type Sender interface {
	Send(ctx context.Context, recipient domain.SubscriberEmail, subject, html, text string) error
}

// LogSender writes messages to the log instead of delivering them. It is the
// "log" driver for local development.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, recipient domain.SubscriberEmail, subject, html, text string) error {
	s.logger.InfoContext(ctx, "email not delivered, log driver in use",
		slog.String("recipient", recipient.String()),
		slog.String("subject", subject),
		slog.String("text", text),
	)
	return nil
}
