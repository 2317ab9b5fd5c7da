// services/progress_tracker.go - Session settlement orchestrator.
// Everything triggered by a session completing (progress, streak,
// leaderboard, achievements, hint rewards) happens here in one
// transaction.
package services

import (
	"errors"
	"fmt"
	"time"

	"gameplatform/config"
	"gameplatform/models"
)

var (
	ErrSessionOwnership  = errors.New("session does not belong to player")
	ErrFreezeNotAllowed  = errors.New("streak freeze not allowed today")
	ErrUnknownRewardType = errors.New("unknown ad reward type")
	ErrGameInactive      = errors.New("game is not active")
)

// EventPublisher receives post-commit analytics events.
type EventPublisher interface {
	Publish(eventType string, payload map[string]interface{})
}

// CacheInvalidator drops cached leaderboard pages after scores change.
type CacheInvalidator interface {
	InvalidateGame(gameID uint)
}

// ProgressTracker orchestrates session lifecycle and settlement over the
// Store capability boundary.
type ProgressTracker struct {
	store  Store
	cfg    *config.Config
	now    func() time.Time
	events EventPublisher
	cache  CacheInvalidator
}

type TrackerOption func(*ProgressTracker)

// WithClock substitutes the time source, for tests.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *ProgressTracker) { t.now = now }
}

func WithEvents(events EventPublisher) TrackerOption {
	return func(t *ProgressTracker) { t.events = events }
}

func WithCacheInvalidator(cache CacheInvalidator) TrackerOption {
	return func(t *ProgressTracker) { t.cache = cache }
}

func NewProgressTracker(store Store, cfg *config.Config, opts ...TrackerOption) *ProgressTracker {
	t := &ProgressTracker{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *ProgressTracker) streakRules() models.StreakRules {
	return models.StreakRules{
		Location:         t.cfg.Location(),
		GracePeriodHours: t.cfg.Streaks.GracePeriodHours,
		Milestones:       t.cfg.Streaks.Milestones,
	}
}

// StartSession opens a new session, abandoning any session the player
// still has open for the same game.
func (t *ProgressTracker) StartSession(playerID, gameID uint, sessionType string, challengeID *uint, deviceInfo map[string]interface{}) (*models.GameSession, error) {
	if sessionType == "" {
		sessionType = models.SessionTypeDaily
	}
	switch sessionType {
	case models.SessionTypeDaily, models.SessionTypePractice, models.SessionTypeEndless, models.SessionTypeTimed:
	default:
		return nil, fmt.Errorf("invalid session type %q", sessionType)
	}

	game, err := t.store.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	if !game.IsActive {
		return nil, ErrGameInactive
	}

	if challengeID != nil {
		challenge, err := t.store.GetChallenge(*challengeID)
		if err != nil {
			return nil, err
		}
		if challenge.GameID != gameID {
			return nil, fmt.Errorf("challenge %d does not belong to game %d", *challengeID, gameID)
		}
	}

	now := t.now()
	session := &models.GameSession{
		PlayerID:    playerID,
		GameID:      gameID,
		ChallengeID: challengeID,
		SessionType: sessionType,
		Status:      models.SessionActive,
		StartedAt:   now,
	}
	if deviceInfo != nil {
		if err := session.SetDeviceInfo(deviceInfo); err != nil {
			return nil, err
		}
	}

	err = t.store.Transaction(func(tx Store) error {
		if prev, err := tx.ActiveSession(playerID, gameID); err == nil {
			prev.Status = models.SessionAbandoned
			if err := tx.SaveSession(prev); err != nil {
				return err
			}
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		return tx.CreateSession(session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// SessionUpdate carries partial in-flight session state.
type SessionUpdate struct {
	CompletionPercentage *int
	MovesCount           *int
	MistakesCount        *int
	Data                 map[string]interface{}
}

// UpdateSession applies in-flight progress to an open session.
func (t *ProgressTracker) UpdateSession(sessionID, playerID uint, upd SessionUpdate) (*models.GameSession, error) {
	var session *models.GameSession
	err := t.store.Transaction(func(tx Store) error {
		var err error
		session, err = t.ownedSession(tx, sessionID, playerID)
		if err != nil {
			return err
		}
		if session.IsTerminal() {
			return models.ErrSessionNotActive
		}

		if upd.CompletionPercentage != nil {
			pct := *upd.CompletionPercentage
			if pct < 0 {
				pct = 0
			}
			if pct > 100 {
				pct = 100
			}
			session.CompletionPercentage = pct
		}
		if upd.MovesCount != nil {
			session.MovesCount = *upd.MovesCount
		}
		if upd.MistakesCount != nil {
			session.MistakesCount = *upd.MistakesCount
		}
		if len(upd.Data) > 0 {
			if err := session.MergeSessionData(upd.Data); err != nil {
				return err
			}
		}
		return tx.SaveSession(session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// PauseSession suspends an active session.
func (t *ProgressTracker) PauseSession(sessionID, playerID uint) (*models.GameSession, error) {
	return t.transitionSession(sessionID, playerID, models.SessionActive, models.SessionPaused)
}

// ResumeSession reactivates a paused session.
func (t *ProgressTracker) ResumeSession(sessionID, playerID uint) (*models.GameSession, error) {
	return t.transitionSession(sessionID, playerID, models.SessionPaused, models.SessionActive)
}

func (t *ProgressTracker) transitionSession(sessionID, playerID uint, from, to string) (*models.GameSession, error) {
	var session *models.GameSession
	err := t.store.Transaction(func(tx Store) error {
		var err error
		session, err = t.ownedSession(tx, sessionID, playerID)
		if err != nil {
			return err
		}
		if session.Status != from {
			return models.ErrSessionNotActive
		}
		session.Status = to
		return tx.SaveSession(session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// AbandonSession discards an open session without settlement.
func (t *ProgressTracker) AbandonSession(sessionID, playerID uint) error {
	return t.store.Transaction(func(tx Store) error {
		session, err := t.ownedSession(tx, sessionID, playerID)
		if err != nil {
			return err
		}
		if session.IsTerminal() {
			return models.ErrSessionSettled
		}
		session.Status = models.SessionAbandoned
		return tx.SaveSession(session)
	})
}

// FailSession marks an open session failed and counts the loss in the
// progress ledger. No streak, leaderboard, or achievement effects.
func (t *ProgressTracker) FailSession(sessionID, playerID uint) error {
	now := t.now()
	return t.store.Transaction(func(tx Store) error {
		session, err := t.ownedSession(tx, sessionID, playerID)
		if err != nil {
			return err
		}
		if session.IsTerminal() {
			return models.ErrSessionSettled
		}
		session.Status = models.SessionFailed
		session.DurationSeconds = int(now.Sub(session.StartedAt).Seconds())
		if err := tx.SaveSession(session); err != nil {
			return err
		}

		progress, err := tx.GetOrCreateProgress(session.PlayerID, session.GameID)
		if err != nil {
			return err
		}
		progress.RecordLoss(now)
		return tx.SaveProgress(progress)
	})
}

// StreakOutcome reports how settlement moved the streak.
type StreakOutcome struct {
	Current   int  `json:"current"`
	Extended  bool `json:"extended"`
	Milestone int  `json:"milestone,omitempty"`
}

// SettlementResult is the structured outcome of CompleteSession.
type SettlementResult struct {
	Session         *models.GameSession  `json:"session"`
	Streak          *StreakOutcome       `json:"streak,omitempty"`
	Achievements    []models.Achievement `json:"achievements"`
	XPEarned        int                  `json:"xp_earned"`
	LevelUp         bool                 `json:"level_up"`
	NewLevel        int                  `json:"new_level,omitempty"`
	HintsEarned     int                  `json:"hints_earned"`
	LeaderboardRank *int64               `json:"leaderboard_rank,omitempty"`
}

// CompleteSession settles a finished session atomically: session state,
// progress ledger, streak, leaderboards, and achievements either all
// commit or none do. A session settles at most once; repeat calls fail
// with ErrSessionSettled.
func (t *ProgressTracker) CompleteSession(sessionID, playerID uint, score int, sessionData map[string]interface{}) (*SettlementResult, error) {
	now := t.now()
	rules := t.streakRules()
	result := &SettlementResult{Achievements: []models.Achievement{}}

	var gameID uint
	var milestone int

	err := t.store.Transaction(func(tx Store) error {
		session, err := t.ownedSession(tx, sessionID, playerID)
		if err != nil {
			return err
		}
		if err := session.Complete(score, sessionData, now); err != nil {
			return err
		}
		if err := tx.SaveSession(session); err != nil {
			return err
		}
		result.Session = session

		game, err := tx.GetGame(session.GameID)
		if err != nil {
			return err
		}
		gameID = game.ID

		player, err := tx.GetPlayer(session.PlayerID)
		if err != nil {
			return err
		}
		player.TotalGamesPlayed++
		player.TotalTimePlayed += session.DurationSeconds

		progress, err := tx.GetOrCreateProgress(player.ID, game.ID)
		if err != nil {
			return err
		}

		isDaily := session.SessionType == models.SessionTypeDaily
		delta := progress.RecordCompletion(score, session.DurationSeconds, isDaily, now)
		if err := tx.SaveProgress(progress); err != nil {
			return err
		}
		result.XPEarned = delta.XPEarned
		if delta.LeveledUp {
			result.LevelUp = true
			result.NewLevel = delta.NewLevel
		}

		// Streak only moves for daily challenge sessions.
		var streak *models.Streak
		if session.IsDailyChallenge() {
			streak, err = tx.GetOrCreateStreak(player.ID, game.ID)
			if err != nil {
				return err
			}
			if eval := streak.Evaluate(rules, now); eval.Status == models.StreakBroken {
				streak.ApplyBreak()
			}
			res := streak.RecordCompletion(rules, now)
			if err := tx.SaveStreak(streak); err != nil {
				return err
			}
			result.Streak = &StreakOutcome{
				Current:   res.Streak,
				Extended:  res.Extended,
				Milestone: res.Milestone,
			}
			if res.Milestone > 0 {
				milestone = res.Milestone
				hints := t.cfg.Rewards.HintsPerMilestone
				player.AddHints(hints)
				result.HintsEarned += hints
			}
		}

		if t.cfg.Rewards.HintsPerCompletion > 0 {
			player.AddHints(t.cfg.Rewards.HintsPerCompletion)
			result.HintsEarned += t.cfg.Rewards.HintsPerCompletion
		}

		if err := tx.SavePlayer(player); err != nil {
			return err
		}

		if game.HasLeaderboard {
			rank, err := t.submitScore(tx, player.ID, game.ID, session, score, now)
			if err != nil {
				return err
			}
			result.LeaderboardRank = rank
		}

		unlocked, err := t.evaluateAchievements(tx, player, game, progress, streak, session, now)
		if err != nil {
			return err
		}
		result.Achievements = unlocked

		return nil
	})
	if err != nil {
		return nil, err
	}

	t.afterSettlement(gameID, playerID, result, milestone)
	return result, nil
}

// submitScore folds the session score into every period bucket and
// returns the player's daily rank.
func (t *ProgressTracker) submitScore(tx Store, playerID, gameID uint, session *models.GameSession, score int, now time.Time) (*int64, error) {
	loc := t.cfg.Location()

	var dailyEntry *models.LeaderboardEntry
	for _, period := range models.StandardPeriods {
		key := models.PeriodKey(period, now, loc)
		entry, err := tx.GetOrCreateLeaderboardEntry(playerID, gameID, period, key)
		if err != nil {
			return nil, err
		}
		entry.ApplyScore(period, score, session.DurationSeconds)
		if err := tx.SaveLeaderboardEntry(entry); err != nil {
			return nil, err
		}
		if period == models.PeriodDaily {
			dailyEntry = entry
		}
	}

	if session.ChallengeID != nil {
		key := models.ChallengePeriodKey(*session.ChallengeID)
		entry, err := tx.GetOrCreateLeaderboardEntry(playerID, gameID, models.PeriodChallenge, key)
		if err != nil {
			return nil, err
		}
		entry.ApplyScore(models.PeriodChallenge, score, session.DurationSeconds)
		if err := tx.SaveLeaderboardEntry(entry); err != nil {
			return nil, err
		}
	}

	ahead, err := tx.EntriesAhead(gameID, models.PeriodDaily, dailyEntry.PeriodKey, dailyEntry.Score, dailyEntry.TimeSeconds)
	if err != nil {
		return nil, err
	}
	rank := ahead + 1
	return &rank, nil
}

// evaluateAchievements unlocks every qualifying achievement exactly
// once. The unique (player, achievement) constraint makes a racing
// duplicate insert benign.
func (t *ProgressTracker) evaluateAchievements(tx Store, player *models.Player, game *models.Game, progress *models.PlayerProgress, streak *models.Streak, session *models.GameSession, now time.Time) ([]models.Achievement, error) {
	achievements, err := tx.ActiveAchievements(game.ID)
	if err != nil {
		return nil, err
	}
	unlockedIDs, err := tx.UnlockedAchievementIDs(player.ID)
	if err != nil {
		return nil, err
	}

	var unlocked []models.Achievement
	for _, a := range achievements {
		if unlockedIDs[a.ID] {
			continue
		}
		if !a.CheckProgress(progress, streak) && !a.CheckSession(session) {
			continue
		}
		created, err := tx.UnlockAchievement(&models.PlayerAchievement{
			PlayerID:      player.ID,
			AchievementID: a.ID,
			GameID:        &game.ID,
			SessionID:     &session.ID,
			UnlockedAt:    now,
		})
		if err != nil {
			return nil, err
		}
		if created {
			unlocked = append(unlocked, a)
		}
	}
	if unlocked == nil {
		unlocked = []models.Achievement{}
	}
	return unlocked, nil
}

// afterSettlement runs the non-transactional tail: cache invalidation
// and analytics events. Failures here never unwind the settlement.
func (t *ProgressTracker) afterSettlement(gameID, playerID uint, result *SettlementResult, milestone int) {
	if t.cache != nil {
		t.cache.InvalidateGame(gameID)
	}
	if t.events == nil {
		return
	}

	t.events.Publish("session_complete", map[string]interface{}{
		"player_id":  playerID,
		"game_id":    gameID,
		"session_id": result.Session.ID,
		"score":      result.Session.Score,
		"duration":   result.Session.DurationSeconds,
		"xp_earned":  result.XPEarned,
		"level_up":   result.LevelUp,
	})
	for _, a := range result.Achievements {
		t.events.Publish("achievement_unlocked", map[string]interface{}{
			"player_id":      playerID,
			"game_id":        gameID,
			"achievement_id": a.ID,
			"slug":           a.Slug,
			"points":         a.Points,
		})
	}
	if milestone > 0 {
		t.events.Publish("streak_milestone", map[string]interface{}{
			"player_id": playerID,
			"game_id":   gameID,
			"milestone": milestone,
		})
	}
}

// HintOutcome reports a successful hint spend.
type HintOutcome struct {
	Charged int `json:"charged"`
	Balance int `json:"balance"`
}

// UseHint spends hints on an open session. Insufficient balance leaves
// every counter untouched and returns models.ErrInsufficientHints.
func (t *ProgressTracker) UseHint(playerID, sessionID uint, hintType string) (*HintOutcome, error) {
	cost := t.cfg.HintCost(hintType)
	outcome := &HintOutcome{Charged: cost}

	err := t.store.Transaction(func(tx Store) error {
		session, err := t.ownedSession(tx, sessionID, playerID)
		if err != nil {
			return err
		}
		if session.IsTerminal() {
			return models.ErrSessionNotActive
		}

		player, err := tx.GetPlayer(playerID)
		if err != nil {
			return err
		}
		if err := player.SpendHints(cost); err != nil {
			return err
		}
		if err := tx.SavePlayer(player); err != nil {
			return err
		}
		outcome.Balance = player.HintsBalance

		session.HintsUsed++
		if err := tx.SaveSession(session); err != nil {
			return err
		}

		progress, err := tx.GetOrCreateProgress(playerID, session.GameID)
		if err != nil {
			return err
		}
		progress.TotalHintsUsed++
		return tx.SaveProgress(progress)
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// UseStreakFreeze protects today's streak by spending one freeze.
func (t *ProgressTracker) UseStreakFreeze(playerID, gameID uint) (*models.Streak, error) {
	now := t.now()
	rules := t.streakRules()

	var streak *models.Streak
	err := t.store.Transaction(func(tx Store) error {
		var err error
		streak, err = tx.GetOrCreateStreak(playerID, gameID)
		if err != nil {
			return err
		}
		if !streak.CanFreeze(rules, now) {
			return ErrFreezeNotAllowed
		}

		player, err := tx.GetPlayer(playerID)
		if err != nil {
			return err
		}
		if err := player.SpendStreakFreeze(); err != nil {
			return err
		}
		if err := tx.SavePlayer(player); err != nil {
			return err
		}

		streak.ApplyFreeze(rules, now)
		return tx.SaveStreak(streak)
	})
	if err != nil {
		return nil, err
	}
	return streak, nil
}

// RecordAdWatched credits a rewarded-ad payout. Freeze credits cap at
// the configured maximum.
func (t *ProgressTracker) RecordAdWatched(playerID uint, rewardType string, amount int) (*models.Player, error) {
	if amount <= 0 {
		amount = 1
	}

	var player *models.Player
	err := t.store.Transaction(func(tx Store) error {
		var err error
		player, err = tx.GetPlayer(playerID)
		if err != nil {
			return err
		}
		switch rewardType {
		case "hints":
			player.AddHints(amount)
		case "streak_freeze":
			player.AddStreakFreezes(amount, t.cfg.Streaks.MaxFreezes)
		default:
			return ErrUnknownRewardType
		}
		return tx.SavePlayer(player)
	})
	if err != nil {
		return nil, err
	}
	return player, nil
}

// CheckStreakStatus evaluates the streak and persists the break when the
// evaluation reports one. Called when the player opens the game.
func (t *ProgressTracker) CheckStreakStatus(playerID, gameID uint) (models.StreakEvaluation, error) {
	now := t.now()
	rules := t.streakRules()

	var eval models.StreakEvaluation
	err := t.store.Transaction(func(tx Store) error {
		streak, err := tx.GetOrCreateStreak(playerID, gameID)
		if err != nil {
			return err
		}
		eval = streak.Evaluate(rules, now)
		if eval.Status == models.StreakBroken {
			streak.ApplyBreak()
			return tx.SaveStreak(streak)
		}
		return nil
	})
	return eval, err
}

// GameStats is the per-game slice of GetPlayerStats.
type GameStats struct {
	GameID         uint     `json:"game_id"`
	GameName       string   `json:"game_name"`
	Level          int      `json:"level"`
	XP             int      `json:"xp"`
	XPToNext       int      `json:"xp_to_next"`
	GamesPlayed    int      `json:"games_played"`
	GamesWon       int      `json:"games_won"`
	WinRate        float64  `json:"win_rate"`
	BestScore      int      `json:"best_score"`
	BestTime       int      `json:"best_time"`
	AverageScore   float64  `json:"average_score"`
	DailyCompleted int      `json:"daily_completed"`
	CurrentStreak  int      `json:"current_streak"`
	LongestStreak  int      `json:"longest_streak"`
	LastPlayed     *string  `json:"last_played,omitempty"`
}

// PlayerStats bundles overall and per-game statistics.
type PlayerStats struct {
	TotalGames        int                  `json:"total_games"`
	TotalTime         int                  `json:"total_time"`
	HintsBalance      int                  `json:"hints_balance"`
	StreakFreezes     int                  `json:"streak_freezes"`
	AchievementPoints int                  `json:"achievement_points"`
	Games             map[string]GameStats `json:"games"`
}

// GetPlayerStats assembles the player's dashboard payload, optionally
// narrowed to one game.
func (t *ProgressTracker) GetPlayerStats(playerID uint, gameID *uint) (*PlayerStats, error) {
	player, err := t.store.GetPlayer(playerID)
	if err != nil {
		return nil, err
	}
	points, err := t.store.AchievementPoints(playerID)
	if err != nil {
		return nil, err
	}

	stats := &PlayerStats{
		TotalGames:        player.TotalGamesPlayed,
		TotalTime:         player.TotalTimePlayed,
		HintsBalance:      player.HintsBalance,
		StreakFreezes:     player.StreakFreezes,
		AchievementPoints: points,
		Games:             make(map[string]GameStats),
	}

	records, err := t.store.ProgressForPlayer(playerID, gameID)
	if err != nil {
		return nil, err
	}

	for _, progress := range records {
		slug := fmt.Sprintf("game_%d", progress.GameID)
		name := ""
		if progress.Game != nil {
			slug = progress.Game.Slug
			name = progress.Game.Name
		}

		gs := GameStats{
			GameID:         progress.GameID,
			GameName:       name,
			Level:          progress.Level,
			XP:             progress.XP,
			XPToNext:       progress.XPToNextLevel(),
			GamesPlayed:    progress.GamesPlayed,
			GamesWon:       progress.GamesWon,
			BestScore:      progress.BestScore,
			BestTime:       progress.BestTimeSeconds,
			AverageScore:   progress.AverageScore,
			DailyCompleted: progress.DailyChallengesCompleted,
		}
		if progress.GamesPlayed > 0 {
			gs.WinRate = float64(progress.GamesWon) / float64(progress.GamesPlayed)
		}
		if progress.LastPlayedAt != nil {
			ts := progress.LastPlayedAt.Format(time.RFC3339)
			gs.LastPlayed = &ts
		}
		if streak, err := t.store.GetStreak(playerID, progress.GameID); err == nil {
			gs.CurrentStreak = streak.CurrentStreak
			gs.LongestStreak = streak.LongestStreak
		}

		stats.Games[slug] = gs
	}

	return stats, nil
}

func (t *ProgressTracker) ownedSession(tx Store, sessionID, playerID uint) (*models.GameSession, error) {
	session, err := tx.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.PlayerID != playerID {
		return nil, ErrSessionOwnership
	}
	return session, nil
}
