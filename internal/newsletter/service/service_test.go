package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/domain"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/email"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/session"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/store"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/store/drivers/sqlite"
	"github.com/aussiebroadwan/newsletter/pkg/cryptox"
	"github.com/aussiebroadwan/newsletter/pkg/idx"
	"github.com/aussiebroadwan/newsletter/pkg/workerx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type fakeSender struct {
	mu     sync.Mutex
	sent   []sentMessage
	failOn string
}

func (f *fakeSender) Send(ctx context.Context, to domain.SubscriberEmail, subject, html, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && to.String() == f.failOn {
		return errors.New("connection reset by peer")
	}
	f.sent = append(f.sent, sentMessage{To: to.String(), Subject: subject, HTML: html, Text: text})
	return nil
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type fixture struct {
	store         *sqlite.Store
	pool          *workerx.Pool
	sender        *fakeSender
	sessions      *session.RedisStore
	credentials   *CredentialService
	sessionSvc    *SessionService
	subscriptions *SubscriptionService
	newsletters   *NewsletterService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	pool := workerx.New(2, 0)
	t.Cleanup(pool.Close)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sessions := session.NewRedisStore(client, time.Hour)

	tpl, err := email.NewTemplates("http://127.0.0.1:8000")
	require.NoError(t, err)

	sender := &fakeSender{}
	creds := &CredentialService{Store: st, Pool: pool}

	return &fixture{
		store:         st,
		pool:          pool,
		sender:        sender,
		sessions:      sessions,
		credentials:   creds,
		sessionSvc:    &SessionService{Sessions: sessions, Credentials: creds},
		subscriptions: &SubscriptionService{Store: st, Sender: sender, Templates: tpl},
		newsletters:   &NewsletterService{Store: st, Sender: sender, Credentials: creds},
	}
}

func (f *fixture) addUser(t *testing.T, username, password string) domain.Account {
	t.Helper()
	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)
	acct := domain.Account{ID: idx.New().String(), Username: username, PasswordHash: hash}
	require.NoError(t, f.store.Users().CreateUser(context.Background(), acct))
	return acct
}

func (f *fixture) addSubscriber(t *testing.T, addr string, status domain.SubscriberStatus) {
	t.Helper()
	require.NoError(t, f.store.Subscriptions().CreateSubscription(context.Background(), domain.Subscriber{
		ID: idx.New().String(), Email: addr, Name: "reader",
		SubscribedAt: time.Now(), Status: status,
	}))
}

// countPending counts pending rows by deleting them; call it last.
func countPending(t *testing.T, st store.Store) int64 {
	t.Helper()
	n, err := st.Subscriptions().DeletePendingBefore(context.Background(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	return n
}

var linkRe = regexp.MustCompile(`/subscriptions/confirm\?subscription_token=([a-zA-Z0-9]{25})`)
