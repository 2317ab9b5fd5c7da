package services

import (
	"testing"
	"time"

	"gameplatform/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCleanupStore struct {
	sessionCutoff *time.Time
	guestCutoff   *time.Time
}

func (f *fakeCleanupStore) AbandonStaleSessions(before time.Time) (int64, error) {
	f.sessionCutoff = &before
	return 3, nil
}

func (f *fakeCleanupStore) DeleteIdleGuests(before time.Time) (int64, error) {
	f.guestCutoff = &before
	return 1, nil
}

func TestCleanupCutoffs(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sessions.StaleTimeoutMinutes = 120
	cfg.Sessions.GuestRetentionDays = 30

	store := &fakeCleanupStore{}
	svc := NewCleanupService(store, cfg)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	require.NoError(t, svc.AbandonStaleSessions())
	require.NotNil(t, store.sessionCutoff)
	assert.Equal(t, now.Add(-2*time.Hour), *store.sessionCutoff)

	require.NoError(t, svc.DeleteIdleGuests())
	require.NotNil(t, store.guestCutoff)
	assert.Equal(t, now.AddDate(0, 0, -30), *store.guestCutoff)
}

func TestCleanupGuestRetentionDisabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sessions.StaleTimeoutMinutes = 120
	cfg.Sessions.GuestRetentionDays = -1

	store := &fakeCleanupStore{}
	svc := NewCleanupService(store, cfg)

	require.NoError(t, svc.DeleteIdleGuests())
	assert.Nil(t, store.guestCutoff)
}

func TestCleanupStartStop(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sessions.StaleTimeoutMinutes = 60
	cfg.Sessions.GuestRetentionDays = 30

	svc := NewCleanupService(&fakeCleanupStore{}, cfg)
	svc.Start()
	svc.Stop()
}
