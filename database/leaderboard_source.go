// database/leaderboard_source.go - Ranked leaderboard reads
package database

import (
	"gameplatform/models"
	"gameplatform/services"
)

var _ services.EntrySource = (*Store)(nil)

func (s *Store) TopEntries(gameID uint, period, periodKey string, limit int) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := s.db.
		Preload("Player").
		Where("game_id = ? AND period = ? AND period_key = ?", gameID, period, periodKey).
		Order("score DESC, time_seconds ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) PlayerEntry(playerID, gameID uint, period, periodKey string) (*models.LeaderboardEntry, error) {
	var entry models.LeaderboardEntry
	err := s.db.
		Where("player_id = ? AND game_id = ? AND period = ? AND period_key = ?", playerID, gameID, period, periodKey).
		First(&entry).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &entry, nil
}
