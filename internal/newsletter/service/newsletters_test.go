package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/domain"
	"github.com/aussiebroadwan/newsletter/pkg/slogx"
	"github.com/stretchr/testify/require"
)

var issue = domain.NewsletterIssue{
	Title: "Newsletter title",
	HTML:  "<p>Newsletter body as HTML</p>",
	Text:  "Newsletter body as plain text",
}

// recordingHandler keeps every record logged through it.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

// storedEmailWarnings returns the stored_email value of every WARN record.
func (h *recordingHandler) storedEmailWarnings() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, r := range h.records {
		if r.Level != slog.LevelWarn {
			continue
		}
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == "stored_email" {
				out = append(out, a.Value.String())
				return false
			}
			return true
		})
	}
	return out
}

func TestPublishSkipsInvalidStoredEmails(t *testing.T) {
	f := newFixture(t)
	acct := f.addUser(t, "admin", "pw")

	f.addSubscriber(t, "a@example.com", domain.StatusConfirmed)
	f.addSubscriber(t, "not an email", domain.StatusConfirmed)
	f.addSubscriber(t, "b@example.com", domain.StatusConfirmed)
	f.addSubscriber(t, "also@not@valid", domain.StatusConfirmed)
	f.addSubscriber(t, "pending@example.com", domain.StatusPendingConfirmation)

	logs := &recordingHandler{}
	ctx := slogx.WithContext(context.Background(), slog.New(logs))

	report, err := f.newsletters.Publish(ctx, issue, domain.Identity{UserID: acct.ID})
	require.NoError(t, err)
	require.Equal(t, domain.PublishReport{Delivered: 2, Skipped: 2}, report)
	require.ElementsMatch(t, []string{"not an email", "also@not@valid"}, logs.storedEmailWarnings())

	var got []string
	for _, m := range f.sender.messages() {
		require.Equal(t, issue.Title, m.Subject)
		require.Equal(t, issue.HTML, m.HTML)
		require.Equal(t, issue.Text, m.Text)
		got = append(got, m.To)
	}
	require.ElementsMatch(t, []string{"a@example.com", "b@example.com"}, got)
}

func TestPublishAbortsOnTransportFailure(t *testing.T) {
	f := newFixture(t)
	acct := f.addUser(t, "admin", "pw")

	f.addSubscriber(t, "a@example.com", domain.StatusConfirmed)
	f.addSubscriber(t, "b@example.com", domain.StatusConfirmed)
	f.addSubscriber(t, "c@example.com", domain.StatusConfirmed)
	f.sender.failOn = "b@example.com"

	report, err := f.newsletters.Publish(context.Background(), issue, domain.Identity{UserID: acct.ID})
	require.ErrorIs(t, err, ErrUnexpected)
	require.Contains(t, err.Error(), "b@example.com")

	// Recipients come back in insertion order, c is never attempted.
	require.Equal(t, 1, report.Delivered)
	require.Len(t, f.sender.messages(), 1)
}

func TestPublishWithoutIdentity(t *testing.T) {
	f := newFixture(t)
	f.addSubscriber(t, "a@example.com", domain.StatusConfirmed)

	_, err := f.newsletters.Publish(context.Background(), issue, domain.Identity{})
	require.ErrorIs(t, err, ErrPublishAuth)
	require.Empty(t, f.sender.messages())
}

func TestAuthenticateBasic(t *testing.T) {
	f := newFixture(t)
	acct := f.addUser(t, "admin", "correct horse")

	who, err := f.newsletters.AuthenticateBasic(context.Background(), Credentials{"admin", "correct horse"})
	require.NoError(t, err)
	require.Equal(t, acct.ID, who.UserID)

	for _, c := range []Credentials{{"admin", "wrong"}, {"ghost", "correct horse"}} {
		_, err := f.newsletters.AuthenticateBasic(context.Background(), c)
		require.ErrorIs(t, err, ErrPublishAuth)
		require.NotErrorIs(t, err, ErrUnexpected)
	}
}
