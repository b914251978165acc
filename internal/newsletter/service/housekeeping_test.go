package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/domain"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/store/drivers/sqlite"
	"github.com/aussiebroadwan/newsletter/pkg/idx"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newHousekeepingStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())
	return st
}

func TestHousekeepingPurgesStalePending(t *testing.T) {
	ctx := context.Background()
	st := newHousekeepingStore(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	stale := domain.Subscriber{
		ID: idx.New().String(), Email: "stale@example.com", Name: "stale",
		SubscribedAt: time.Now().Add(-48 * time.Hour), Status: domain.StatusPendingConfirmation,
	}
	fresh := domain.Subscriber{
		ID: idx.New().String(), Email: "fresh@example.com", Name: "fresh",
		SubscribedAt: time.Now(), Status: domain.StatusPendingConfirmation,
	}
	require.NoError(t, st.Subscriptions().CreateSubscription(ctx, stale))
	require.NoError(t, st.Subscriptions().CreateSubscription(ctx, fresh))

	hk := NewHousekeepingService(st, logger, nil, time.Hour, 24*time.Hour)
	hk.Cleanup(ctx)

	_, err := st.Subscriptions().GetSubscriptionByID(ctx, stale.ID)
	require.Error(t, err)
	_, err = st.Subscriptions().GetSubscriptionByID(ctx, fresh.ID)
	require.NoError(t, err)
}

func TestHousekeepingZeroRetentionKeepsEverything(t *testing.T) {
	ctx := context.Background()
	st := newHousekeepingStore(t)

	old := domain.Subscriber{
		ID: idx.New().String(), Email: "old@example.com", Name: "old",
		SubscribedAt: time.Now().Add(-365 * 24 * time.Hour), Status: domain.StatusPendingConfirmation,
	}
	require.NoError(t, st.Subscriptions().CreateSubscription(ctx, old))

	hk := NewHousekeepingService(st, slog.New(slog.NewTextHandler(io.Discard, nil)), nil, 0, 0)
	require.Equal(t, time.Hour, hk.Interval)
	hk.Cleanup(ctx)

	_, err := st.Subscriptions().GetSubscriptionByID(ctx, old.ID)
	require.NoError(t, err)
}

func TestHousekeepingStopsCleanly(t *testing.T) {
	st := newHousekeepingStore(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hk := NewHousekeepingService(st, slog.New(slog.NewTextHandler(io.Discard, nil)), nil, 10*time.Millisecond, time.Hour)
	hk.Start()
	time.Sleep(30 * time.Millisecond)
	hk.Stop()
}
