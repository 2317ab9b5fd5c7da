package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gameplatform/config"
)

func TestUntilNextReset(t *testing.T) {
	cfg := &config.Config{}
	cfg.Daily.Timezone = "UTC"
	cfg.Daily.ResetHour = 3

	s := NewScheduler(nil, cfg)

	// Before the reset hour: wait until 03:00 today.
	s.now = func() time.Time { return time.Date(2026, 9, 1, 1, 0, 0, 0, time.UTC) }
	assert.Equal(t, 2*time.Hour, s.untilNextReset())

	// After the reset hour: wait until 03:00 tomorrow.
	s.now = func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) }
	assert.Equal(t, 15*time.Hour, s.untilNextReset())

	// Exactly at the reset hour rolls to the next day.
	s.now = func() time.Time { return time.Date(2026, 9, 1, 3, 0, 0, 0, time.UTC) }
	assert.Equal(t, 24*time.Hour, s.untilNextReset())
}

func TestSchedulerStartStop(t *testing.T) {
	cfg := &config.Config{}
	cfg.Daily.Timezone = "UTC"
	cfg.Daily.ResetHour = 3
	cfg.Daily.GenerateAheadDays = 1

	store := &memChallengeStore{}
	gen := NewContentGenerator(store, cfg)

	s := NewScheduler(gen, cfg)
	s.Start()
	s.Stop()
}
