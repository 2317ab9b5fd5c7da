package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriodKey(t *testing.T) {
	// 2026-09-01 is a Tuesday; its week starts Monday 2026-08-31.
	now := time.Date(2026, 9, 1, 18, 30, 0, 0, time.UTC)

	assert.Equal(t, "2026-09-01", PeriodKey(PeriodDaily, now, time.UTC))
	assert.Equal(t, "2026-08-31", PeriodKey(PeriodWeekly, now, time.UTC))
	assert.Equal(t, "2026-09", PeriodKey(PeriodMonthly, now, time.UTC))
	assert.Equal(t, "all", PeriodKey(PeriodAllTime, now, time.UTC))
}

func TestPeriodKeyMondayIsItsOwnWeekStart(t *testing.T) {
	monday := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-31", PeriodKey(PeriodWeekly, monday, time.UTC))

	sunday := time.Date(2026, 9, 6, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-31", PeriodKey(PeriodWeekly, sunday, time.UTC))
}

func TestPeriodKeyUsesLocation(t *testing.T) {
	denver, err := time.LoadLocation("America/Denver")
	assert.NoError(t, err)

	// 03:00 UTC on Sep 2 is still Sep 1 in Denver.
	now := time.Date(2026, 9, 2, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-09-01", PeriodKey(PeriodDaily, now, denver))
}

func TestChallengePeriodKey(t *testing.T) {
	assert.Equal(t, "challenge_42", ChallengePeriodKey(42))
}

func TestApplyScoreDailyBestOf(t *testing.T) {
	e := &LeaderboardEntry{}

	e.ApplyScore(PeriodDaily, 500, 90)
	assert.Equal(t, 500, e.Score)
	assert.Equal(t, 90, e.TimeSeconds)
	assert.Equal(t, 1, e.GamesCount)

	// Lower score does not replace, but still counts the game.
	e.ApplyScore(PeriodDaily, 300, 30)
	assert.Equal(t, 500, e.Score)
	assert.Equal(t, 90, e.TimeSeconds)
	assert.Equal(t, 2, e.GamesCount)

	// Strictly better score replaces score and time together.
	e.ApplyScore(PeriodDaily, 600, 200)
	assert.Equal(t, 600, e.Score)
	assert.Equal(t, 200, e.TimeSeconds)
	assert.Equal(t, 3, e.GamesCount)
}

func TestApplyScoreWeeklyAccumulates(t *testing.T) {
	e := &LeaderboardEntry{}

	e.ApplyScore(PeriodWeekly, 500, 90)
	e.ApplyScore(PeriodWeekly, 300, 60)

	assert.Equal(t, 800, e.Score)
	assert.Equal(t, 60, e.TimeSeconds) // best time kept
	assert.Equal(t, 2, e.GamesCount)
}

func TestApplyScoreChallengeBestOf(t *testing.T) {
	e := &LeaderboardEntry{}

	e.ApplyScore(PeriodChallenge, 400, 100)
	e.ApplyScore(PeriodChallenge, 200, 50)

	assert.Equal(t, 400, e.Score)
	assert.Equal(t, 100, e.TimeSeconds)
}
