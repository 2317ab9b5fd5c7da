// database/store.go - GORM implementation of the settlement store
package database

import (
	"errors"

	"gameplatform/models"
	"gameplatform/services"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store adapts a gorm.DB to the services.Store capability interface.
type Store struct {
	db *gorm.DB
}

var _ services.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Transaction(fn func(tx services.Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.ErrNotFound
	}
	return err
}

func (s *Store) GetPlayer(id uint) (*models.Player, error) {
	var player models.Player
	if err := s.db.First(&player, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &player, nil
}

func (s *Store) SavePlayer(player *models.Player) error {
	return s.db.Save(player).Error
}

func (s *Store) GetGame(id uint) (*models.Game, error) {
	var game models.Game
	if err := s.db.First(&game, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &game, nil
}

func (s *Store) GetChallenge(id uint) (*models.DailyChallenge, error) {
	var challenge models.DailyChallenge
	if err := s.db.First(&challenge, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &challenge, nil
}

func (s *Store) GetSession(id uint) (*models.GameSession, error) {
	var session models.GameSession
	if err := s.db.First(&session, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &session, nil
}

func (s *Store) CreateSession(session *models.GameSession) error {
	return s.db.Create(session).Error
}

func (s *Store) SaveSession(session *models.GameSession) error {
	return s.db.Save(session).Error
}

func (s *Store) ActiveSession(playerID, gameID uint) (*models.GameSession, error) {
	var session models.GameSession
	err := s.db.Where("player_id = ? AND game_id = ? AND status IN ?",
		playerID, gameID, []string{models.SessionActive, models.SessionPaused}).
		Order("started_at DESC").
		First(&session).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &session, nil
}

func (s *Store) GetOrCreateProgress(playerID, gameID uint) (*models.PlayerProgress, error) {
	progress := models.PlayerProgress{PlayerID: playerID, GameID: gameID, Level: 1}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&progress).Error; err != nil {
		return nil, err
	}
	// Re-fetch: the insert may have lost a benign race.
	var out models.PlayerProgress
	if err := s.db.Where("player_id = ? AND game_id = ?", playerID, gameID).First(&out).Error; err != nil {
		return nil, translateErr(err)
	}
	return &out, nil
}

func (s *Store) SaveProgress(progress *models.PlayerProgress) error {
	return s.db.Save(progress).Error
}

func (s *Store) GetStreak(playerID, gameID uint) (*models.Streak, error) {
	var streak models.Streak
	err := s.db.Where("player_id = ? AND game_id = ?", playerID, gameID).First(&streak).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &streak, nil
}

func (s *Store) GetOrCreateStreak(playerID, gameID uint) (*models.Streak, error) {
	streak := models.Streak{PlayerID: playerID, GameID: gameID}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&streak).Error; err != nil {
		return nil, err
	}
	var out models.Streak
	if err := s.db.Where("player_id = ? AND game_id = ?", playerID, gameID).First(&out).Error; err != nil {
		return nil, translateErr(err)
	}
	return &out, nil
}

func (s *Store) SaveStreak(streak *models.Streak) error {
	return s.db.Save(streak).Error
}

func (s *Store) GetOrCreateLeaderboardEntry(playerID, gameID uint, period, periodKey string) (*models.LeaderboardEntry, error) {
	entry := models.LeaderboardEntry{
		PlayerID:  playerID,
		GameID:    gameID,
		Period:    period,
		PeriodKey: periodKey,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; err != nil {
		return nil, err
	}
	var out models.LeaderboardEntry
	err := s.db.Where("player_id = ? AND game_id = ? AND period = ? AND period_key = ?",
		playerID, gameID, period, periodKey).First(&out).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &out, nil
}

func (s *Store) SaveLeaderboardEntry(entry *models.LeaderboardEntry) error {
	return s.db.Save(entry).Error
}

func (s *Store) EntriesAhead(gameID uint, period, periodKey string, score, timeSeconds int) (int64, error) {
	var count int64
	err := s.db.Model(&models.LeaderboardEntry{}).
		Where("game_id = ? AND period = ? AND period_key = ?", gameID, period, periodKey).
		Where("score > ? OR (score = ? AND time_seconds < ?)", score, score, timeSeconds).
		Count(&count).Error
	return count, err
}

func (s *Store) ActiveAchievements(gameID uint) ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := s.db.Where("is_active = ?", true).
		Where("game_id = ? OR game_id IS NULL", gameID).
		Order("sort_order ASC").
		Find(&achievements).Error
	return achievements, err
}

func (s *Store) UnlockedAchievementIDs(playerID uint) (map[uint]bool, error) {
	var ids []uint
	err := s.db.Model(&models.PlayerAchievement{}).
		Where("player_id = ?", playerID).
		Pluck("achievement_id", &ids).Error
	if err != nil {
		return nil, err
	}
	unlocked := make(map[uint]bool, len(ids))
	for _, id := range ids {
		unlocked[id] = true
	}
	return unlocked, nil
}

func (s *Store) UnlockAchievement(unlock *models.PlayerAchievement) (bool, error) {
	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(unlock)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *Store) AchievementPoints(playerID uint) (int, error) {
	var points int64
	err := s.db.Model(&models.PlayerAchievement{}).
		Joins("JOIN achievements ON achievements.id = player_achievements.achievement_id").
		Where("player_achievements.player_id = ?", playerID).
		Select("COALESCE(SUM(achievements.points), 0)").
		Scan(&points).Error
	return int(points), err
}

func (s *Store) ProgressForPlayer(playerID uint, gameID *uint) ([]models.PlayerProgress, error) {
	query := s.db.Preload("Game").Where("player_id = ?", playerID)
	if gameID != nil {
		query = query.Where("game_id = ?", *gameID)
	}
	var records []models.PlayerProgress
	err := query.Find(&records).Error
	return records, err
}
