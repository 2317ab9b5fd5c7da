// database/challenge_store.go - Challenge generation and lookup queries
package database

import (
	"gameplatform/models"
	"gameplatform/services"
)

var _ services.ChallengeStore = (*Store)(nil)

func (s *Store) ChallengeExists(gameID uint, date string) (bool, error) {
	var count int64
	err := s.db.Model(&models.DailyChallenge{}).
		Where("game_id = ? AND challenge_date = ?", gameID, date).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) DeleteChallengeByDate(gameID uint, date string) error {
	return s.db.
		Where("game_id = ? AND challenge_date = ?", gameID, date).
		Delete(&models.DailyChallenge{}).Error
}

func (s *Store) MaxChallengeNumber(gameID uint) (int, error) {
	var max int
	err := s.db.Model(&models.DailyChallenge{}).
		Where("game_id = ?", gameID).
		Select("COALESCE(MAX(challenge_number), 0)").
		Scan(&max).Error
	return max, err
}

func (s *Store) CreateChallenge(challenge *models.DailyChallenge) error {
	return s.db.Create(challenge).Error
}

func (s *Store) DailyEnabledGames() ([]models.Game, error) {
	var games []models.Game
	err := s.db.
		Where("daily_enabled = ? AND is_active = ?", true, true).
		Order("id").
		Find(&games).Error
	return games, err
}

func (s *Store) GameBySlug(slug string) (*models.Game, error) {
	var game models.Game
	if err := s.db.Where("slug = ?", slug).First(&game).Error; err != nil {
		return nil, translateErr(err)
	}
	return &game, nil
}

// ChallengeForDate returns the active challenge for a game on a date.
func (s *Store) ChallengeForDate(gameID uint, date string) (*models.DailyChallenge, error) {
	var challenge models.DailyChallenge
	err := s.db.
		Where("game_id = ? AND challenge_date = ? AND is_active = ?", gameID, date, true).
		First(&challenge).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &challenge, nil
}

// ChallengeArchive lists past challenges for a game, newest first.
func (s *Store) ChallengeArchive(gameID uint, before string, limit int) ([]models.DailyChallenge, error) {
	var challenges []models.DailyChallenge
	err := s.db.
		Where("game_id = ? AND challenge_date < ? AND is_active = ?", gameID, before, true).
		Order("challenge_date DESC").
		Limit(limit).
		Find(&challenges).Error
	return challenges, err
}

// ActiveGames lists the playable game catalog.
func (s *Store) ActiveGames() ([]models.Game, error) {
	var games []models.Game
	err := s.db.Where("is_active = ?", true).Order("id").Find(&games).Error
	return games, err
}
