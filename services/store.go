// services/store.go - Persistence capabilities the settlement pipeline
// depends on. The production implementation lives in the database
// package; tests substitute an in-memory fake.
package services

import (
	"errors"

	"gameplatform/models"
)

var ErrNotFound = errors.New("record not found")

// Store is the transactional persistence boundary for the progress
// tracker. Transaction runs fn against a store whose writes commit or
// roll back atomically.
type Store interface {
	Transaction(fn func(tx Store) error) error

	GetPlayer(id uint) (*models.Player, error)
	SavePlayer(player *models.Player) error

	GetGame(id uint) (*models.Game, error)
	GetChallenge(id uint) (*models.DailyChallenge, error)

	GetSession(id uint) (*models.GameSession, error)
	CreateSession(session *models.GameSession) error
	SaveSession(session *models.GameSession) error
	// ActiveSession returns the player's current active or paused
	// session for a game, or ErrNotFound.
	ActiveSession(playerID, gameID uint) (*models.GameSession, error)

	// GetOrCreateProgress atomically fetches or creates the
	// (player, game) progress row, relying on the natural-key unique
	// constraint rather than read-then-write.
	GetOrCreateProgress(playerID, gameID uint) (*models.PlayerProgress, error)
	SaveProgress(progress *models.PlayerProgress) error

	GetStreak(playerID, gameID uint) (*models.Streak, error)
	GetOrCreateStreak(playerID, gameID uint) (*models.Streak, error)
	SaveStreak(streak *models.Streak) error

	GetOrCreateLeaderboardEntry(playerID, gameID uint, period, periodKey string) (*models.LeaderboardEntry, error)
	SaveLeaderboardEntry(entry *models.LeaderboardEntry) error
	// EntriesAhead counts entries strictly ranked above the given
	// score/time in a bucket (higher score wins; ties broken by lower
	// time).
	EntriesAhead(gameID uint, period, periodKey string, score, timeSeconds int) (int64, error)

	// ActiveAchievements returns active achievements scoped to the game
	// or global (nil game).
	ActiveAchievements(gameID uint) ([]models.Achievement, error)
	UnlockedAchievementIDs(playerID uint) (map[uint]bool, error)
	// UnlockAchievement inserts an unlock row, reporting false when the
	// (player, achievement) pair already exists.
	UnlockAchievement(unlock *models.PlayerAchievement) (bool, error)
	AchievementPoints(playerID uint) (int, error)

	ProgressForPlayer(playerID uint, gameID *uint) ([]models.PlayerProgress, error)
}
