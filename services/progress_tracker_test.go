package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gameplatform/config"
	"gameplatform/models"
)

type recordedEvent struct {
	Type    string
	Payload map[string]interface{}
}

type captureEvents struct {
	events []recordedEvent
}

func (c *captureEvents) Publish(eventType string, payload map[string]interface{}) {
	c.events = append(c.events, recordedEvent{Type: eventType, Payload: payload})
}

type captureCache struct {
	invalidated []uint
}

func (c *captureCache) InvalidateGame(gameID uint) {
	c.invalidated = append(c.invalidated, gameID)
}

type ProgressTrackerSuite struct {
	suite.Suite

	store   *memStore
	cfg     *config.Config
	events  *captureEvents
	cache   *captureCache
	now     time.Time
	tracker *ProgressTracker
}

func (s *ProgressTrackerSuite) SetupTest() {
	s.cfg = &config.Config{}
	s.cfg.Daily.Timezone = "UTC"
	s.cfg.Streaks.GracePeriodHours = 12
	s.cfg.Streaks.InitialFreezes = 1
	s.cfg.Streaks.MaxFreezes = 5
	s.cfg.Streaks.Milestones = []int{7, 30, 100, 365}
	s.cfg.Rewards.InitialHints = 3
	s.cfg.Rewards.HintsPerMilestone = 2
	s.cfg.Rewards.HintCosts = map[string]int{
		"reveal_letter": 1,
		"reveal_word":   2,
		"skip_puzzle":   3,
	}

	s.store = newMemStore()
	s.store.players[1] = &models.Player{ID: 1, UserID: 1, HintsBalance: 3, StreakFreezes: 1}
	s.store.games[1] = &models.Game{ID: 1, Slug: "decode_daily", Name: "Decode Daily", IsActive: true, DailyEnabled: true, HasLeaderboard: true}
	s.store.challenges[10] = &models.DailyChallenge{ID: 10, GameID: 1, ChallengeDate: "2026-09-01", ChallengeNumber: 44}

	gameID := uint(1)
	s.store.achievements = []models.Achievement{
		{ID: 1, Slug: "first-win", RequirementType: models.RequirementGamesWon, RequirementValue: 1, Points: 10, IsActive: true, SortOrder: 1},
		{ID: 2, Slug: "games-10", RequirementType: models.RequirementGamesWon, RequirementValue: 10, Points: 25, IsActive: true, SortOrder: 2},
		{ID: 3, Slug: "streak-7", RequirementType: models.RequirementStreak, RequirementValue: 7, Points: 50, IsActive: true, SortOrder: 3},
		{ID: 4, Slug: "perfect-game", RequirementType: models.RequirementPerfectGame, Points: 25, IsActive: true, SortOrder: 4},
		{ID: 5, Slug: "speed-60", RequirementType: models.RequirementSpeed, RequirementValue: 60, Points: 30, IsActive: true, SortOrder: 5},
		{ID: 6, Slug: "other-game", GameID: &gameID, RequirementType: models.RequirementGamesWon, RequirementValue: 1, Points: 5, IsActive: false, SortOrder: 6},
	}

	s.events = &captureEvents{}
	s.cache = &captureCache{}
	s.now = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	s.tracker = NewProgressTracker(s.store, s.cfg,
		WithClock(func() time.Time { return s.now }),
		WithEvents(s.events),
		WithCacheInvalidator(s.cache),
	)
}

func (s *ProgressTrackerSuite) startDaily() *models.GameSession {
	challengeID := uint(10)
	session, err := s.tracker.StartSession(1, 1, models.SessionTypeDaily, &challengeID, nil)
	s.Require().NoError(err)
	return session
}

func (s *ProgressTrackerSuite) advance(d time.Duration) {
	s.now = s.now.Add(d)
}

func (s *ProgressTrackerSuite) TestStartSessionAbandonsPrevious() {
	first := s.startDaily()
	second := s.startDaily()

	s.NotEqual(first.ID, second.ID)
	s.Equal(models.SessionAbandoned, s.store.sessions[first.ID].Status)
	s.Equal(models.SessionActive, second.Status)
}

func (s *ProgressTrackerSuite) TestStartSessionRejectsInactiveGame() {
	s.store.games[1].IsActive = false
	_, err := s.tracker.StartSession(1, 1, models.SessionTypeDaily, nil, nil)
	s.ErrorIs(err, ErrGameInactive)
}

func (s *ProgressTrackerSuite) TestStartSessionRejectsForeignChallenge() {
	s.store.games[2] = &models.Game{ID: 2, Slug: "stack_sort", IsActive: true}
	challengeID := uint(10)
	_, err := s.tracker.StartSession(1, 2, models.SessionTypeDaily, &challengeID, nil)
	s.Error(err)
}

func (s *ProgressTrackerSuite) TestCompleteDailySession() {
	session := s.startDaily()
	s.advance(90 * time.Second)

	result, err := s.tracker.CompleteSession(session.ID, 1, 500, map[string]interface{}{"solved": true})
	s.Require().NoError(err)

	s.Equal(models.SessionCompleted, result.Session.Status)
	s.Equal(500, result.Session.Score)
	s.Equal(90, result.Session.DurationSeconds)

	// 500/10 = 50 XP plus a speed bonus for finishing under two minutes.
	s.Equal(56, result.XPEarned)
	s.False(result.LevelUp)

	progress := s.store.progress[pairKey(1, 1)]
	s.Equal(1, progress.GamesPlayed)
	s.Equal(1, progress.GamesWon)
	s.Equal(500, progress.BestScore)
	s.Equal(1, progress.DailyChallengesCompleted)
	s.Equal(1, progress.Level)

	s.Require().NotNil(result.Streak)
	s.Equal(1, result.Streak.Current)
	s.True(result.Streak.Extended)
	s.Zero(result.Streak.Milestone)

	s.Require().NotNil(result.LeaderboardRank)
	s.Equal(int64(1), *result.LeaderboardRank)

	daily := s.store.entries[entryKey(1, 1, models.PeriodDaily, "2026-09-01")]
	s.Require().NotNil(daily)
	s.Equal(500, daily.Score)
	s.Equal(90, daily.TimeSeconds)

	challenge := s.store.entries[entryKey(1, 1, models.PeriodChallenge, "challenge_10")]
	s.Require().NotNil(challenge)
	s.Equal(500, challenge.Score)

	slugs := make([]string, 0, len(result.Achievements))
	for _, a := range result.Achievements {
		slugs = append(slugs, a.Slug)
	}
	s.Equal([]string{"first-win", "perfect-game"}, slugs)

	s.Zero(result.HintsEarned)

	player := s.store.players[1]
	s.Equal(1, player.TotalGamesPlayed)
	s.Equal(90, player.TotalTimePlayed)

	s.Equal([]uint{1}, s.cache.invalidated)
	s.Require().NotEmpty(s.events.events)
	s.Equal("session_complete", s.events.events[0].Type)
}

func (s *ProgressTrackerSuite) TestCompleteSessionTwiceFails() {
	session := s.startDaily()
	_, err := s.tracker.CompleteSession(session.ID, 1, 500, nil)
	s.Require().NoError(err)

	_, err = s.tracker.CompleteSession(session.ID, 1, 900, nil)
	s.ErrorIs(err, models.ErrSessionSettled)

	// First settlement stands.
	s.Equal(500, s.store.sessions[session.ID].Score)
	s.Equal(1, s.store.progress[pairKey(1, 1)].GamesPlayed)
}

func (s *ProgressTrackerSuite) TestCompleteSessionWrongPlayer() {
	session := s.startDaily()
	_, err := s.tracker.CompleteSession(session.ID, 99, 500, nil)
	s.ErrorIs(err, ErrSessionOwnership)
}

func (s *ProgressTrackerSuite) TestSpeedAchievementUnlocks() {
	session := s.startDaily()
	s.advance(45 * time.Second)

	result, err := s.tracker.CompleteSession(session.ID, 1, 300, nil)
	s.Require().NoError(err)

	slugs := map[string]bool{}
	for _, a := range result.Achievements {
		slugs[a.Slug] = true
	}
	s.True(slugs["speed-60"])
	s.True(slugs["perfect-game"]) // no hints, no mistakes
}

func (s *ProgressTrackerSuite) TestAchievementUnlocksOnce() {
	progress, err := s.store.GetOrCreateProgress(1, 1)
	s.Require().NoError(err)
	progress.GamesPlayed = 9
	progress.GamesWon = 9

	session := s.startDaily()
	s.advance(200 * time.Second)
	result, err := s.tracker.CompleteSession(session.ID, 1, 100, nil)
	s.Require().NoError(err)

	var got []string
	for _, a := range result.Achievements {
		got = append(got, a.Slug)
	}
	s.Contains(got, "games-10")

	// An eleventh win must not duplicate the unlock.
	s.advance(24 * time.Hour)
	session = s.startDaily()
	s.advance(200 * time.Second)
	result, err = s.tracker.CompleteSession(session.ID, 1, 100, nil)
	s.Require().NoError(err)
	for _, a := range result.Achievements {
		s.NotEqual("games-10", a.Slug)
	}
	s.Len(s.store.unlocks, 3) // first-win + games-10 + perfect-game
}

func (s *ProgressTrackerSuite) TestStreakMilestoneGrantsHints() {
	streak, err := s.store.GetOrCreateStreak(1, 1)
	s.Require().NoError(err)
	streak.CurrentStreak = 6
	streak.LongestStreak = 6
	streak.LastCompletedDate = "2026-08-31"

	session := s.startDaily()
	s.advance(60 * time.Second)
	result, err := s.tracker.CompleteSession(session.ID, 1, 400, nil)
	s.Require().NoError(err)

	s.Require().NotNil(result.Streak)
	s.Equal(7, result.Streak.Current)
	s.Equal(7, result.Streak.Milestone)
	s.Equal(2, result.HintsEarned)
	s.Equal(5, s.store.players[1].HintsBalance)

	var milestones []recordedEvent
	for _, e := range s.events.events {
		if e.Type == "streak_milestone" {
			milestones = append(milestones, e)
		}
	}
	s.Require().Len(milestones, 1)
	s.Equal(7, milestones[0].Payload["milestone"])
}

func (s *ProgressTrackerSuite) TestPracticeSessionSkipsStreak() {
	session, err := s.tracker.StartSession(1, 1, models.SessionTypePractice, nil, nil)
	s.Require().NoError(err)
	s.advance(60 * time.Second)

	result, err := s.tracker.CompleteSession(session.ID, 1, 250, nil)
	s.Require().NoError(err)

	s.Nil(result.Streak)
	s.Zero(s.store.progress[pairKey(1, 1)].DailyChallengesCompleted)
	// Practice still scores the standard leaderboard periods.
	s.NotNil(s.store.entries[entryKey(1, 1, models.PeriodDaily, "2026-09-01")])
}

func (s *ProgressTrackerSuite) TestDailyLeaderboardKeepsBest() {
	session := s.startDaily()
	s.advance(90 * time.Second)
	_, err := s.tracker.CompleteSession(session.ID, 1, 500, nil)
	s.Require().NoError(err)

	session = s.startDaily()
	s.advance(30 * time.Second)
	_, err = s.tracker.CompleteSession(session.ID, 1, 300, nil)
	s.Require().NoError(err)

	daily := s.store.entries[entryKey(1, 1, models.PeriodDaily, "2026-09-01")]
	s.Equal(500, daily.Score)
	s.Equal(90, daily.TimeSeconds)
	s.Equal(2, daily.GamesCount)

	alltime := s.store.entries[entryKey(1, 1, models.PeriodAllTime, "all")]
	s.Equal(800, alltime.Score)
}

func (s *ProgressTrackerSuite) TestDailyRankCountsBetterEntries() {
	rival := s.store.entries
	rival[entryKey(2, 1, models.PeriodDaily, "2026-09-01")] = &models.LeaderboardEntry{
		PlayerID: 2, GameID: 1, Period: models.PeriodDaily, PeriodKey: "2026-09-01",
		Score: 800, TimeSeconds: 60, GamesCount: 1,
	}

	session := s.startDaily()
	s.advance(90 * time.Second)
	result, err := s.tracker.CompleteSession(session.ID, 1, 500, nil)
	s.Require().NoError(err)

	s.Require().NotNil(result.LeaderboardRank)
	s.Equal(int64(2), *result.LeaderboardRank)
}

func (s *ProgressTrackerSuite) TestUseHintSpendsBalance() {
	session := s.startDaily()

	outcome, err := s.tracker.UseHint(1, session.ID, "reveal_word")
	s.Require().NoError(err)

	s.Equal(2, outcome.Charged)
	s.Equal(1, outcome.Balance)
	s.Equal(1, s.store.sessions[session.ID].HintsUsed)
	s.Equal(1, s.store.progress[pairKey(1, 1)].TotalHintsUsed)
}

func (s *ProgressTrackerSuite) TestUseHintInsufficientBalance() {
	s.store.players[1].HintsBalance = 0
	session := s.startDaily()

	_, err := s.tracker.UseHint(1, session.ID, "reveal_letter")
	s.ErrorIs(err, models.ErrInsufficientHints)

	s.Zero(s.store.players[1].HintsBalance)
	s.Zero(s.store.sessions[session.ID].HintsUsed)
	_, ok := s.store.progress[pairKey(1, 1)]
	s.False(ok)
}

func (s *ProgressTrackerSuite) TestUseHintOnSettledSession() {
	session := s.startDaily()
	_, err := s.tracker.CompleteSession(session.ID, 1, 500, nil)
	s.Require().NoError(err)

	_, err = s.tracker.UseHint(1, session.ID, "reveal_letter")
	s.ErrorIs(err, models.ErrSessionNotActive)
}

func (s *ProgressTrackerSuite) TestUseStreakFreeze() {
	streak, err := s.store.GetOrCreateStreak(1, 1)
	s.Require().NoError(err)
	streak.CurrentStreak = 4
	streak.LastCompletedDate = "2026-08-31"

	frozen, err := s.tracker.UseStreakFreeze(1, 1)
	s.Require().NoError(err)

	s.Equal("2026-09-01", frozen.StreakFrozenDate)
	s.Equal(1, frozen.FreezesUsedTotal)
	s.Zero(s.store.players[1].StreakFreezes)

	// Second freeze the same day is rejected before spending anything.
	s.store.players[1].StreakFreezes = 1
	_, err = s.tracker.UseStreakFreeze(1, 1)
	s.ErrorIs(err, ErrFreezeNotAllowed)
	s.Equal(1, s.store.players[1].StreakFreezes)
}

func (s *ProgressTrackerSuite) TestUseStreakFreezeWithoutBalance() {
	s.store.players[1].StreakFreezes = 0
	streak, err := s.store.GetOrCreateStreak(1, 1)
	s.Require().NoError(err)
	streak.CurrentStreak = 2
	streak.LastCompletedDate = "2026-08-31"

	_, err = s.tracker.UseStreakFreeze(1, 1)
	s.ErrorIs(err, models.ErrInsufficientFreezes)
	s.Empty(streak.StreakFrozenDate)
}

func (s *ProgressTrackerSuite) TestRecordAdWatched() {
	player, err := s.tracker.RecordAdWatched(1, "hints", 2)
	s.Require().NoError(err)
	s.Equal(5, player.HintsBalance)

	// Freeze credits cap at the configured maximum.
	player.StreakFreezes = 4
	player, err = s.tracker.RecordAdWatched(1, "streak_freeze", 3)
	s.Require().NoError(err)
	s.Equal(5, player.StreakFreezes)

	_, err = s.tracker.RecordAdWatched(1, "gems", 1)
	s.ErrorIs(err, ErrUnknownRewardType)
}

func (s *ProgressTrackerSuite) TestCheckStreakStatusPersistsBreak() {
	streak, err := s.store.GetOrCreateStreak(1, 1)
	s.Require().NoError(err)
	streak.CurrentStreak = 12
	streak.LongestStreak = 12
	streak.LastCompletedDate = "2026-08-25"

	eval, err := s.tracker.CheckStreakStatus(1, 1)
	s.Require().NoError(err)

	s.Equal(models.StreakBroken, eval.Status)
	s.Equal(12, eval.LostStreak)
	s.Zero(s.store.streaks[pairKey(1, 1)].CurrentStreak)
	s.Equal(12, s.store.streaks[pairKey(1, 1)].LongestStreak)

	// A second check reports a clean slate.
	eval, err = s.tracker.CheckStreakStatus(1, 1)
	s.Require().NoError(err)
	s.Equal(models.StreakNone, eval.Status)
}

func (s *ProgressTrackerSuite) TestPauseResumeAbandon() {
	session := s.startDaily()

	paused, err := s.tracker.PauseSession(session.ID, 1)
	s.Require().NoError(err)
	s.Equal(models.SessionPaused, paused.Status)

	// Completing from paused still settles.
	_, err = s.tracker.ResumeSession(session.ID, 1)
	s.Require().NoError(err)

	s.Require().NoError(s.tracker.AbandonSession(session.ID, 1))
	s.Equal(models.SessionAbandoned, s.store.sessions[session.ID].Status)

	s.ErrorIs(s.tracker.AbandonSession(session.ID, 1), models.ErrSessionSettled)
}

func (s *ProgressTrackerSuite) TestFailSessionRecordsLoss() {
	session := s.startDaily()
	s.advance(120 * time.Second)

	s.Require().NoError(s.tracker.FailSession(session.ID, 1))

	s.Equal(models.SessionFailed, s.store.sessions[session.ID].Status)
	progress := s.store.progress[pairKey(1, 1)]
	s.Equal(1, progress.GamesPlayed)
	s.Zero(progress.GamesWon)
	// No leaderboard or streak writes on a loss.
	s.Empty(s.store.entries)
	s.Empty(s.store.streaks)
}

func (s *ProgressTrackerSuite) TestUpdateSessionClampsPercentage() {
	session := s.startDaily()

	pct := 150
	moves := 12
	updated, err := s.tracker.UpdateSession(session.ID, 1, SessionUpdate{
		CompletionPercentage: &pct,
		MovesCount:           &moves,
		Data:                 map[string]interface{}{"grid": "abc"},
	})
	s.Require().NoError(err)

	s.Equal(100, updated.CompletionPercentage)
	s.Equal(12, updated.MovesCount)
	data, err := updated.GetSessionData()
	s.Require().NoError(err)
	s.Equal("abc", data["grid"])
}

func (s *ProgressTrackerSuite) TestGetPlayerStats() {
	session := s.startDaily()
	s.advance(90 * time.Second)
	_, err := s.tracker.CompleteSession(session.ID, 1, 500, nil)
	s.Require().NoError(err)

	stats, err := s.tracker.GetPlayerStats(1, nil)
	s.Require().NoError(err)

	s.Equal(1, stats.TotalGames)
	s.Equal(90, stats.TotalTime)
	s.Equal(3, stats.HintsBalance)
	s.Equal(35, stats.AchievementPoints) // first-win + perfect-game

	gs, ok := stats.Games["decode_daily"]
	s.Require().True(ok)
	s.Equal(1, gs.GamesWon)
	s.Equal(500, gs.BestScore)
	s.Equal(1, gs.CurrentStreak)
	s.Require().NotNil(gs.LastPlayed)
}

func TestProgressTrackerSuite(t *testing.T) {
	suite.Run(t, new(ProgressTrackerSuite))
}
